package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type key int

const TraceIdKey key = 1

// GetTraceIdOfRequest returns the trace id stored on the request context by the
// logger middleware. Returns "unknown" when the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}

// WithTraceId stores the trace id on a plain context.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}
