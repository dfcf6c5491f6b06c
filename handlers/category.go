package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/categories"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	activeOnly := c.DefaultQuery("active", "true") != "false"
	list, err := h.cat.List(c.Request.Context(), activeOnly)
	if err != nil {
		slog.Error("error in fetching categories", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}

	respond(c, http.StatusOK, "Categories fetched", list)
}

func (h *Handler) GetCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.cat.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		slog.Error("error in fetching category", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch category")
		return
	}

	respond(c, http.StatusOK, "Category fetched", category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nc categories.NewCategory
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

	category, err := h.cat.Insert(c.Request.Context(), nc)
	if err != nil {
		if errors.Is(err, categories.ErrDuplicate) {
			respondError(c, http.StatusConflict, "Category already exists")
			return
		}
		slog.Error("error in inserting category", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Category creation failed")
		return
	}

	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	var nc categories.NewCategory
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

	category, err := h.cat.Update(c.Request.Context(), id, nc)
	if err != nil {
		switch {
		case errors.Is(err, categories.ErrNotFound):
			respondError(c, http.StatusNotFound, "Category not found")
		case errors.Is(err, categories.ErrDuplicate):
			respondError(c, http.StatusConflict, "Category already exists")
		default:
			slog.Error("error in updating category", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			respondError(c, http.StatusInternalServerError, "Category update failed")
		}
		return
	}

	respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.cat.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		slog.Error("error in deleting category", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Category deletion failed")
		return
	}

	respond(c, http.StatusOK, "Category successfully deleted", nil)
}
