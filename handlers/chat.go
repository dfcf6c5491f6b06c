package handlers

import (
	"log/slog"
	"net/http"

	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Chat(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req struct {
		Message string `json:"message" validate:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := h.checkStruct(req, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	reply, err := h.assistant.Respond(c.Request.Context(), req.Message)
	if err != nil {
		slog.Error("error in generating chat reply", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Assistant is unavailable")
		return
	}

	respond(c, http.StatusOK, "Reply generated", reply)
}
