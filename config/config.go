package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every external setting the service needs. It is loaded once in
// main and handed to constructors, so no package reads the environment at call
// time.
type Config struct {
	ServiceName    string
	HTTPPort       string
	EndpointPrefix string
	GinMode        string

	DB     DBConfig
	JWT    JWTConfig
	SMTP   SMTPConfig
	Stripe StripeConfig
	Kafka  KafkaConfig
	Consul ConsulConfig

	// Flat shipping fee applied at checkout, in the smallest currency unit.
	ShippingFee int64
	// Orders at or above this subtotal ship for free. Zero disables it.
	FreeShippingThreshold int64
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type StripeConfig struct {
	Key        string
	SuccessURL string
	CancelURL  string
}

func (s StripeConfig) Enabled() bool {
	return s.Key != ""
}

type KafkaConfig struct {
	Brokers []string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type ConsulConfig struct {
	Address     string
	ServiceHost string
}

func (c ConsulConfig) Enabled() bool {
	return c.Address != ""
}

// Load reads .env (when present) and builds the Config. Settings without a
// sensible default are required.
func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:    getEnv("SERVICE_NAME", "shuttle-store"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		EndpointPrefix: getEnv("SERVICE_ENDPOINT_PREFIX", "/api"),
		GinMode:        os.Getenv("GIN_MODE"),
		DB: DBConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     getEnv("POSTGRES_DB", "shuttlestore"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@shuttlestore.local"),
		},
		Stripe: StripeConfig{
			Key:        os.Getenv("STRIPE_TEST_KEY"),
			SuccessURL: getEnv("STRIPE_SUCCESS_URL", "https://example.com/success"),
			CancelURL:  getEnv("STRIPE_CANCEL_URL", "https://example.com/cancel"),
		},
		Consul: ConsulConfig{
			Address:     os.Getenv("CONSUL_HTTP_ADDR"),
			ServiceHost: getEnv("SERVICE_HOST", "localhost"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	fee, err := getEnvInt64("SHIPPING_FEE", 30000)
	if err != nil {
		return nil, err
	}
	cfg.ShippingFee = fee

	threshold, err := getEnvInt64("FREE_SHIPPING_THRESHOLD", 500000)
	if err != nil {
		return nil, err
	}
	cfg.FreeShippingThreshold = threshold

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.DB.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
