package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/reviews"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProductReviews(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	list, err := h.rv.ListApproved(c.Request.Context(), productID)
	if err != nil {
		slog.Error("error in fetching reviews", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	respond(c, http.StatusOK, "Reviews fetched", list)
}

func (h *Handler) CreateReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := userIDFromRequest(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var nr reviews.NewReview
	if err := c.ShouldBindJSON(&nr); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nr, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	review, err := h.rv.Insert(c.Request.Context(), userID, nr)
	if err != nil {
		if errors.Is(err, reviews.ErrAlreadyReviewed) {
			respondError(c, http.StatusConflict, "You already reviewed this product")
			return
		}
		slog.Error("error in inserting review", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Review creation failed")
		return
	}

	respond(c, http.StatusCreated, "Review submitted for moderation", review)
}

func (h *Handler) ListReviewsForModeration(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	status := c.DefaultQuery("status", reviews.StatusPending)
	switch status {
	case reviews.StatusPending, reviews.StatusApproved, reviews.StatusRejected:
	default:
		respondError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}

	list, err := h.rv.ListByStatus(c.Request.Context(), status)
	if err != nil {
		slog.Error("error in fetching reviews", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	respond(c, http.StatusOK, "Reviews fetched", list)
}

func (h *Handler) ModerateReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid review id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(req, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	review, err := h.rv.Moderate(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			respondError(c, http.StatusNotFound, "Review not found")
		case errors.Is(err, reviews.ErrInvalidStatus):
			respondError(c, http.StatusBadRequest, "Invalid review status")
		default:
			slog.Error("error in moderating review", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Review moderation failed")
		}
		return
	}

	respond(c, http.StatusOK, "Review "+review.Status, review)
}

func (h *Handler) DeleteReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.rv.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Review not found")
			return
		}
		slog.Error("error in deleting review", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Review deletion failed")
		return
	}

	respond(c, http.StatusOK, "Review successfully deleted", nil)
}
