package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func couponRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Deps{})
	r := gin.New()
	r.POST("/coupons", h.CreateCoupon)
	r.PUT("/coupons/:id", h.UpdateCoupon)
	return r
}

const invertedWindowCoupon = `{
	"code": "SAVE10",
	"discount_type": "percentage",
	"discount_value": 10,
	"valid_from": "2026-06-01T00:00:00Z",
	"valid_until": "2026-01-01T00:00:00Z"
}`

func TestCreateCouponRejectsInvertedValidityWindow(t *testing.T) {
	r := couponRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/coupons", strings.NewReader(invertedWindowCoupon))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid_until must be after valid_from")
}

func TestUpdateCouponRejectsInvertedValidityWindow(t *testing.T) {
	r := couponRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/coupons/7", strings.NewReader(invertedWindowCoupon))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid_until must be after valid_from")
}
