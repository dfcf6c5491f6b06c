package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"shuttle-store/internal/auth"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Authentication rejects requests without a valid bearer token and stores the
// verified claims on the request context.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		claims, ok := m.claimsFromHeader(c, traceId)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Identify attaches claims when a valid token is present but lets anonymous
// requests through. Cart and checkout endpoints serve guests this way.
func (m *Mid) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		if c.Request.Header.Get("Authorization") != "" {
			claims, ok := m.claimsFromHeader(c, traceId)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
				return
			}
			ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// Authorize wraps a handler and only runs it when the authenticated user holds
// the required role.
func (m *Mid) Authorize(next gin.HandlerFunc, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		if !ok {
			slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		// Admins may use user endpoints, not the other way around.
		if claims.Role != requiredRole && claims.Role != auth.RoleAdmin {
			slog.Error("role mismatch", slog.String(logkey.TraceID, traceId),
				slog.String("Required", requiredRole), slog.String("Got", claims.Role))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden"})
			return
		}

		next(c)
	}
}

func (m *Mid) claimsFromHeader(c *gin.Context, traceId string) (auth.Claims, bool) {
	header := c.Request.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		slog.Error("malformed authorization header", slog.String(logkey.TraceID, traceId))
		return auth.Claims{}, false
	}

	claims, err := m.keys.ValidateToken(parts[1])
	if err != nil {
		slog.Error("token validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		return auth.Claims{}, false
	}
	return claims, true
}
