package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shuttle-store/config"
	"shuttle-store/handlers"
	"shuttle-store/internal/auth"
	"shuttle-store/internal/brands"
	"shuttle-store/internal/cart"
	"shuttle-store/internal/categories"
	"shuttle-store/internal/chat"
	"shuttle-store/internal/consul"
	"shuttle-store/internal/coupons"
	"shuttle-store/internal/email"
	"shuttle-store/internal/orders"
	"shuttle-store/internal/payments"
	"shuttle-store/internal/products"
	"shuttle-store/internal/reviews"
	"shuttle-store/internal/settings"
	"shuttle-store/internal/stores/kafka"
	"shuttle-store/internal/stores/postgres"

	"github.com/gin-gonic/gin"
)

func main() {
	setupSlog()

	if err := startApp(); err != nil {
		slog.Error("error in starting the service", slog.String("Error", err.Error()))
		log.Fatal(err)
	}
}

func startApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.Info("migrating and connecting to database", slog.String("Host", cfg.DB.Host))
	db, err := postgres.OpenDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	keys, err := auth.NewKeys(cfg.JWT.Secret)
	if err != nil {
		return fmt.Errorf("initializing auth keys: %w", err)
	}

	productConf, err := products.NewConf(db)
	if err != nil {
		return fmt.Errorf("products conf: %w", err)
	}
	categoryConf, err := categories.NewConf(db)
	if err != nil {
		return fmt.Errorf("categories conf: %w", err)
	}
	brandConf, err := brands.NewConf(db)
	if err != nil {
		return fmt.Errorf("brands conf: %w", err)
	}
	cartConf, err := cart.NewConf(db)
	if err != nil {
		return fmt.Errorf("cart conf: %w", err)
	}
	couponConf, err := coupons.NewConf(db)
	if err != nil {
		return fmt.Errorf("coupons conf: %w", err)
	}
	orderConf, err := orders.NewConf(db, couponConf, orders.ShippingPolicy{
		Fee:           cfg.ShippingFee,
		FreeThreshold: cfg.FreeShippingThreshold,
	})
	if err != nil {
		return fmt.Errorf("orders conf: %w", err)
	}
	reviewConf, err := reviews.NewConf(db)
	if err != nil {
		return fmt.Errorf("reviews conf: %w", err)
	}
	settingsConf, err := settings.NewConf(db)
	if err != nil {
		return fmt.Errorf("settings conf: %w", err)
	}
	paymentConf, err := payments.NewConf(cfg.Stripe, orderConf)
	if err != nil {
		return fmt.Errorf("payments conf: %w", err)
	}
	assistant, err := chat.NewAssistant(productConf, orderConf)
	if err != nil {
		return fmt.Errorf("chat assistant: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Queued emails survive restarts; the worker drains them in the background.
	outbox, err := email.NewOutbox(db)
	if err != nil {
		return fmt.Errorf("email outbox: %w", err)
	}
	if cfg.SMTP.Enabled() {
		go email.NewWorker(outbox, email.NewSMTPSender(cfg.SMTP)).Run(ctx)
	} else {
		slog.Warn("SMTP is not configured, queued emails stay pending")
	}

	var kafkaConf *kafka.Conf
	if cfg.Kafka.Enabled() {
		kafkaConf, err = kafka.NewConf(cfg.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("Kafka is not configured, order events are not published")
	}

	if cfg.Consul.Enabled() {
		client, err := consul.NewClient(cfg.Consul.Address)
		if err != nil {
			return fmt.Errorf("connecting to consul: %w", err)
		}
		if err := consul.RegisterService(client, cfg.ServiceName, cfg.Consul.ServiceHost, cfg.HTTPPort); err != nil {
			return fmt.Errorf("registering with consul: %w", err)
		}
		defer func() {
			if err := consul.DeregisterService(client, cfg.ServiceName, cfg.Consul.ServiceHost, cfg.HTTPPort); err != nil {
				slog.Error("error in deregistering from consul", slog.String("Error", err.Error()))
			}
		}()
	}

	ginMode := cfg.GinMode
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}

	api := http.Server{
		Addr:         ":" + cfg.HTTPPort,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler: handlers.API(cfg.EndpointPrefix, ginMode, keys, handlers.Deps{
			Products:   productConf,
			Categories: categoryConf,
			Brands:     brandConf,
			Cart:       cartConf,
			Coupons:    couponConf,
			Orders:     orderConf,
			Reviews:    reviewConf,
			Settings:   settingsConf,
			Payments:   paymentConf,
			Assistant:  assistant,
			Kafka:      kafkaConf,
		}),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting http server", slog.String("Port", cfg.HTTPPort))
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			if closeErr := api.Close(); closeErr != nil {
				return errors.Join(err, fmt.Errorf("forcing server close: %w", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func setupSlog() {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})
	slog.SetDefault(slog.New(logHandler))
}
