package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/brands"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBrands(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	activeOnly := c.DefaultQuery("active", "true") != "false"
	list, err := h.b.List(c.Request.Context(), activeOnly)
	if err != nil {
		slog.Error("error in fetching brands", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch brands")
		return
	}

	respond(c, http.StatusOK, "Brands fetched", list)
}

func (h *Handler) GetBrand(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid brand id")
		return
	}

	brand, err := h.b.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, brands.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Brand not found")
			return
		}
		slog.Error("error in fetching brand", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch brand")
		return
	}

	respond(c, http.StatusOK, "Brand fetched", brand)
}

func (h *Handler) CreateBrand(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nb brands.NewBrand
	if err := c.ShouldBindJSON(&nb); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nb, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	brand, err := h.b.Insert(c.Request.Context(), nb)
	if err != nil {
		if errors.Is(err, brands.ErrDuplicate) {
			respondError(c, http.StatusConflict, "Brand already exists")
			return
		}
		slog.Error("error in inserting brand", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Brand creation failed")
		return
	}

	respond(c, http.StatusCreated, "Brand created successfully", brand)
}

func (h *Handler) UpdateBrand(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid brand id")
		return
	}

	var nb brands.NewBrand
	if err := c.ShouldBindJSON(&nb); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nb, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	brand, err := h.b.Update(c.Request.Context(), id, nb)
	if err != nil {
		switch {
		case errors.Is(err, brands.ErrNotFound):
			respondError(c, http.StatusNotFound, "Brand not found")
		case errors.Is(err, brands.ErrDuplicate):
			respondError(c, http.StatusConflict, "Brand already exists")
		default:
			slog.Error("error in updating brand", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Brand update failed")
		}
		return
	}

	respond(c, http.StatusOK, "Brand updated successfully", brand)
}

func (h *Handler) DeleteBrand(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid brand id")
		return
	}

	if err := h.b.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, brands.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Brand not found")
			return
		}
		slog.Error("error in deleting brand", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Brand deletion failed")
		return
	}

	respond(c, http.StatusOK, "Brand successfully deleted", nil)
}
