package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shuttle-store/internal/coupons"
	"shuttle-store/internal/orders"
	"shuttle-store/internal/stores/kafka"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	var req orders.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(req, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	order, err := h.o.CreateFromCart(c.Request.Context(), req, owner)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyCart):
			respondError(c, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, orders.ErrProductUnavailable):
			respondError(c, http.StatusBadRequest, "A product in the cart is no longer available")
		case errors.Is(err, orders.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, "Not enough stock for an item in the cart")
		case errors.Is(err, coupons.ErrNotFound), errors.Is(err, coupons.ErrInactive),
			errors.Is(err, coupons.ErrNotStarted), errors.Is(err, coupons.ErrExpired),
			errors.Is(err, coupons.ErrUsageExceeded), errors.Is(err, coupons.ErrUserExceeded),
			errors.Is(err, coupons.ErrMinimumOrder):
			respondError(c, http.StatusBadRequest, coupons.FailureMessage(err))
		default:
			slog.Error("error in creating order", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String("Order Number", order.OrderNumber))

	h.publishOrderPlaced(order)

	respond(c, http.StatusCreated, "Order placed successfully", order)
}

// publishOrderPlaced pushes the event off the request path. A failed publish
// is logged, never surfaced, the order is already committed.
func (h *Handler) publishOrderPlaced(order orders.Order) {
	if h.k == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := kafka.OrderPlacedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
			CreatedAt:   order.CreatedAt,
		}
		if order.UserID != nil {
			event.UserID = *order.UserID
		}
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("error in marshalling order placed event",
				slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(ctx, kafka.TopicOrderPlaced, []byte(order.ID), value); err != nil {
			slog.Error("error in publishing order placed event",
				slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

func (h *Handler) publishStatusChanged(order orders.Order, from string) {
	if h.k == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := kafka.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			FromStatus:  from,
			ToStatus:    order.Status,
			ChangedAt:   time.Now().UTC(),
		}
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("error in marshalling status changed event",
				slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(ctx, kafka.TopicOrderStatusChanged, []byte(order.ID), value); err != nil {
			slog.Error("error in publishing status changed event",
				slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := userIDFromRequest(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}

	list, total, err := h.o.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondPage(c, "Orders fetched", list, Pagination{Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := userIDFromRequest(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := c.Param("id")
	order, err := h.o.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		slog.Error("error in fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	// Customers only see their own orders; admins see any.
	if !isAdmin(c) && (order.UserID == nil || *order.UserID != userID) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}

	respond(c, http.StatusOK, "Order fetched", order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := userIDFromRequest(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := c.Param("id")

	prior, err := h.o.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		slog.Error("error in fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	order, err := h.o.CancelByCustomer(c.Request.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			respondError(c, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrNotCancellable):
			respondError(c, http.StatusBadRequest, "Order can no longer be cancelled")
		default:
			slog.Error("error in cancelling order", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to cancel order")
		}
		return
	}

	h.publishStatusChanged(order, prior.Status)

	respond(c, http.StatusOK, "Order cancelled", order)
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && !orders.IsValidStatus(status) {
		respondError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}

	list, total, err := h.o.ListAll(c.Request.Context(), status, limit, offset)
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondPage(c, "Orders fetched", list, Pagination{Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !orders.IsValidStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Unknown order status")
		return
	}

	current, err := h.o.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		slog.Error("error in fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	order, err := h.o.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			respondError(c, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrInvalidTransition):
			respondError(c, http.StatusBadRequest,
				"Cannot move order from "+current.Status+" to "+req.Status)
		default:
			slog.Error("error in updating order status", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	slog.Info("order status updated", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, orderID), slog.String("From", current.Status),
		slog.String("To", order.Status))

	h.publishStatusChanged(order, current.Status)

	respond(c, http.StatusOK, "Order status updated", order)
}

func pageParams(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		respondError(c, http.StatusBadRequest, "Invalid limit parameter")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondError(c, http.StatusBadRequest, "Invalid offset parameter")
		return 0, 0, false
	}
	return limit, offset, true
}
