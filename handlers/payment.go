package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"shuttle-store/internal/orders"
	"shuttle-store/internal/payments"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
)

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	if h.pay == nil {
		respond(c, http.StatusOK, "Payment methods fetched", []payments.Method{})
		return
	}
	respond(c, http.StatusOK, "Payment methods fetched", h.pay.Methods())
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("orderID")

	if h.pay == nil {
		respondError(c, http.StatusServiceUnavailable, "Card payments are not available")
		return
	}

	url, err := h.pay.CreateCheckoutSession(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotConfigured):
			respondError(c, http.StatusServiceUnavailable, "Card payments are not available")
		case errors.Is(err, payments.ErrNotCardOrder):
			respondError(c, http.StatusBadRequest, "Order was not placed with card payment")
		case errors.Is(err, payments.ErrAlreadyPaid):
			respondError(c, http.StatusBadRequest, "Order is already paid")
		case errors.Is(err, orders.ErrNotFound):
			respondError(c, http.StatusNotFound, "Order not found")
		default:
			slog.Error("error in creating checkout session", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to create checkout session")
		}
		return
	}

	respond(c, http.StatusOK, "Checkout session created", gin.H{"payment_url": url})
}

// PaymentWebhook consumes Stripe events. Unknown event types are acknowledged
// and ignored so Stripe stops retrying them.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if h.pay == nil {
		respondError(c, http.StatusServiceUnavailable, "Card payments are not available")
		return
	}

	const maxBodyBytes = 64 * 1024
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		slog.Error("error in reading webhook body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Error("error in parsing webhook event", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			slog.Error("error in parsing payment intent", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusBadRequest, "Invalid payment intent payload")
			return
		}
		if err := h.pay.HandlePaymentSucceeded(c.Request.Context(), intent); err != nil {
			slog.Error("error in settling paid order", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to process payment")
			return
		}
		slog.Info("payment settled", slog.String(logkey.TraceID, traceId),
			slog.String("Payment Intent", intent.ID))
	default:
		slog.Info("ignoring webhook event", slog.String(logkey.TraceID, traceId),
			slog.String("Event Type", string(event.Type)))
	}

	respond(c, http.StatusOK, "Webhook processed", nil)
}
