package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/settings"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSettings(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	values, err := h.st.GetAll(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching settings", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	respond(c, http.StatusOK, "Settings fetched", values)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(values) == 0 {
		respondError(c, http.StatusBadRequest, "No settings provided")
		return
	}

	if err := h.st.Upsert(c.Request.Context(), values); err != nil {
		slog.Error("error in updating settings", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	respond(c, http.StatusOK, "Settings updated", nil)
}

func (h *Handler) ListBanners(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	activeOnly := c.DefaultQuery("active", "true") != "false"
	list, err := h.st.ListBanners(c.Request.Context(), activeOnly)
	if err != nil {
		slog.Error("error in fetching banners", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch banners")
		return
	}

	respond(c, http.StatusOK, "Banners fetched", list)
}

func (h *Handler) CreateBanner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nb settings.NewBanner
	if err := c.ShouldBindJSON(&nb); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nb, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	banner, err := h.st.InsertBanner(c.Request.Context(), nb)
	if err != nil {
		slog.Error("error in inserting banner", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Banner creation failed")
		return
	}

	respond(c, http.StatusCreated, "Banner created successfully", banner)
}

func (h *Handler) UpdateBanner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid banner id")
		return
	}

	var nb settings.NewBanner
	if err := c.ShouldBindJSON(&nb); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(nb, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	banner, err := h.st.UpdateBanner(c.Request.Context(), id, nb)
	if err != nil {
		if errors.Is(err, settings.ErrBannerNotFound) {
			respondError(c, http.StatusNotFound, "Banner not found")
			return
		}
		slog.Error("error in updating banner", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Banner update failed")
		return
	}

	respond(c, http.StatusOK, "Banner updated successfully", banner)
}

func (h *Handler) DeleteBanner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid banner id")
		return
	}

	if err := h.st.DeleteBanner(c.Request.Context(), id); err != nil {
		if errors.Is(err, settings.ErrBannerNotFound) {
			respondError(c, http.StatusNotFound, "Banner not found")
			return
		}
		slog.Error("error in deleting banner", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Banner deletion failed")
		return
	}

	respond(c, http.StatusOK, "Banner successfully deleted", nil)
}
