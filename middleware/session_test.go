package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Session())
	r.GET("/probe", func(c *gin.Context) {
		seen = SessionID(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestSessionMintsIDForNewGuests(t *testing.T) {
	r, seen := sessionRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	echoed := w.Header().Get(SessionHeader)
	assert.NotEmpty(t, echoed)
	assert.Equal(t, echoed, *seen)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestSessionKeepsExistingID(t *testing.T) {
	r, seen := sessionRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SessionHeader, "guest-abc-123")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest-abc-123", w.Header().Get(SessionHeader))
	assert.Equal(t, "guest-abc-123", *seen)
}
