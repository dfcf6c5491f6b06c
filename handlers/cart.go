package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/auth"
	"shuttle-store/internal/cart"
	"shuttle-store/middleware"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// ownerFromRequest resolves the cart owner for the request. Authenticated
// users own their cart by user id, everyone else by the session header.
func ownerFromRequest(c *gin.Context) (cart.Owner, bool) {
	if claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims); ok {
		return cart.Owner{UserID: claims.Subject}, true
	}
	if sid := middleware.SessionID(c); sid != "" {
		return cart.Owner{SessionID: sid}, true
	}
	return cart.Owner{}, false
}

func userIDFromRequest(c *gin.Context) (string, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

func isAdmin(c *gin.Context) bool {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return ok && claims.Role == auth.RoleAdmin
}

type addToCartRequest struct {
	ProductID          string            `json:"product_id" validate:"required"`
	Quantity           int               `json:"quantity" validate:"required,min=1"`
	SelectedAttributes map[string]string `json:"selected_attributes"`
}

func (h *Handler) GetCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	crt, err := h.crt.Get(c.Request.Context(), owner)
	if err != nil {
		slog.Error("error in fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respond(c, http.StatusOK, "Cart fetched", crt)
}

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	var req addToCartRequest
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

	err := h.crt.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity, req.SelectedAttributes)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductUnavailable):
			respondError(c, http.StatusBadRequest, "Product is not available")
		case errors.Is(err, cart.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, "Not enough stock for the requested quantity")
		default:
			slog.Error("error in adding cart item", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ProductID, req.ProductID), slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to add item to cart")
		}
		return
	}

	crt, err := h.crt.Get(c.Request.Context(), owner)
	if err != nil {
		slog.Error("error in fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respond(c, http.StatusOK, "Item added to cart", crt)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.crt.UpdateQuantity(c.Request.Context(), owner, itemID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrItemNotFound):
			respondError(c, http.StatusNotFound, "Cart item not found")
		case errors.Is(err, cart.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, "Not enough stock for the requested quantity")
		default:
			slog.Error("error in updating cart item", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Failed to update cart item")
		}
		return
	}

	crt, err := h.crt.Get(c.Request.Context(), owner)
	if err != nil {
		slog.Error("error in fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respond(c, http.StatusOK, "Cart item updated", crt)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	if err := h.crt.RemoveItem(c.Request.Context(), owner, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(c, http.StatusNotFound, "Cart item not found")
			return
		}
		slog.Error("error in removing cart item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}

	respond(c, http.StatusOK, "Cart item removed", nil)
}

func (h *Handler) ClearCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	if err := h.crt.Clear(c.Request.Context(), owner); err != nil {
		slog.Error("error in clearing cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respond(c, http.StatusOK, "Cart cleared", nil)
}

func (h *Handler) SyncCartPrices(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner, ok := ownerFromRequest(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Missing session identifier")
		return
	}

	updated, err := h.crt.SyncPrices(c.Request.Context(), owner)
	if err != nil {
		slog.Error("error in syncing cart prices", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to sync cart prices")
		return
	}

	crt, err := h.crt.Get(c.Request.Context(), owner)
	if err != nil {
		slog.Error("error in fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respond(c, http.StatusOK, "Cart prices synced, "+strconv.Itoa(updated)+" item(s) repriced", crt)
}

func (h *Handler) MergeCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := userIDFromRequest(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		SessionID string `json:"session_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(req, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	if err := h.crt.MergeGuestCart(c.Request.Context(), req.SessionID, userID); err != nil {
		slog.Error("error in merging guest cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to merge cart")
		return
	}

	crt, err := h.crt.Get(c.Request.Context(), cart.Owner{UserID: userID})
	if err != nil {
		slog.Error("error in fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respond(c, http.StatusOK, "Guest cart merged", crt)
}
