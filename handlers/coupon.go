package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/coupons"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type validateCouponRequest struct {
	Code string `json:"code" validate:"required"`
	// OrderAmount is optional; when zero the current cart subtotal is used.
	OrderAmount int64 `json:"order_amount" validate:"min=0"`
}

func (h *Handler) ValidateCoupon(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req validateCouponRequest
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

	orderAmount := req.OrderAmount
	if orderAmount == 0 {
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
		orderAmount = crt.Subtotal
	}

	userID, _ := userIDFromRequest(c)

	result, err := h.cp.Validate(c.Request.Context(), req.Code, orderAmount, userID)
	if err != nil {
		slog.Error("error in validating coupon", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to validate coupon")
		return
	}

	respond(c, http.StatusOK, result.Message, result)
}

func (h *Handler) ListCoupons(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.cp.List(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching coupons", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch coupons")
		return
	}

	respond(c, http.StatusOK, "Coupons fetched", list)
}

func (h *Handler) CreateCoupon(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nc coupons.NewCoupon
	if err := c.ShouldBindJSON(&nc); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nc, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}
	if !nc.ValidUntil.After(nc.ValidFrom) {
		respondError(c, http.StatusBadRequest, "valid_until must be after valid_from")
		return
	}

	coupon, err := h.cp.Insert(c.Request.Context(), nc)
	if err != nil {
		if errors.Is(err, coupons.ErrDuplicate) {
			respondError(c, http.StatusConflict, "Coupon code already exists")
			return
		}
		slog.Error("error in inserting coupon", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Coupon creation failed")
		return
	}

	respond(c, http.StatusCreated, "Coupon created successfully", coupon)
}

func (h *Handler) UpdateCoupon(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid coupon id")
		return
	}

	var nc coupons.NewCoupon
	if err := c.ShouldBindJSON(&nc); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nc, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}
	if !nc.ValidUntil.After(nc.ValidFrom) {
		respondError(c, http.StatusBadRequest, "valid_until must be after valid_from")
		return
	}

	coupon, err := h.cp.Update(c.Request.Context(), id, nc)
	if err != nil {
		switch {
		case errors.Is(err, coupons.ErrNotFound):
			respondError(c, http.StatusNotFound, "Coupon not found")
		case errors.Is(err, coupons.ErrDuplicate):
			respondError(c, http.StatusConflict, "Coupon code already exists")
		default:
			slog.Error("error in updating coupon", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.CouponID, strconv.Itoa(id)), slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Coupon update failed")
		}
		return
	}

	respond(c, http.StatusOK, "Coupon updated successfully", coupon)
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid coupon id")
		return
	}

	if err := h.cp.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, coupons.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Coupon not found")
			return
		}
		slog.Error("error in deleting coupon", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Coupon deletion failed")
		return
	}

	respond(c, http.StatusOK, "Coupon successfully deleted", nil)
}
