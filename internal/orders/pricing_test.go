package orders

import (
	"testing"
	"time"

	"shuttle-store/internal/coupons"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeLine(name string, quantity int, unitPrice int64, stock int) cartLine {
	return cartLine{
		productID:     "p-" + name,
		productName:   name,
		productStatus: "active",
		quantity:      quantity,
		unitPrice:     unitPrice,
		stock:         stock,
	}
}

func percentCoupon(value int64) *coupons.Coupon {
	return &coupons.Coupon{
		ID:            1,
		Code:          "SAVE",
		DiscountType:  coupons.TypePercentage,
		DiscountValue: value,
		Active:        true,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestPriceCartRejectsBadCarts(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	shipping := ShippingPolicy{Fee: 30000, FreeThreshold: 500000}

	tests := []struct {
		name  string
		lines []cartLine
		want  error
	}{
		{
			name:  "empty cart",
			lines: nil,
			want:  ErrEmptyCart,
		},
		{
			name: "inactive product aborts the whole order",
			lines: []cartLine{
				activeLine("Astrox 88D", 1, 200000, 10),
				{productName: "Old racket", productStatus: "discontinued", quantity: 1, unitPrice: 100000, stock: 5},
			},
			want: ErrProductUnavailable,
		},
		{
			name: "insufficient stock aborts the whole order",
			lines: []cartLine{
				activeLine("Astrox 88D", 1, 200000, 10),
				activeLine("Aerosensa 50", 4, 50000, 3),
			},
			want: ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := priceCart(tt.lines, nil, 0, shipping, now)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, pricing{}, got, "a rejected cart must produce no partial pricing")
		})
	}
}

func TestPriceCartTotals(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lines    []cartLine
		coupon   *coupons.Coupon
		userUsed int
		shipping ShippingPolicy
		want     pricing
	}{
		{
			name: "subtotal from captured unit prices",
			lines: []cartLine{
				activeLine("Astrox 88D", 2, 150000, 10),
				activeLine("Aerosensa 50", 1, 50000, 5),
			},
			shipping: ShippingPolicy{Fee: 30000, FreeThreshold: 500000},
			want:     pricing{Subtotal: 350000, ShippingFee: 30000, TotalAmount: 380000},
		},
		{
			name:   "ten percent coupon on 200000",
			lines:  []cartLine{activeLine("Astrox 88D", 1, 200000, 10)},
			coupon: percentCoupon(10),
			want: pricing{
				Subtotal:       200000,
				DiscountAmount: 20000,
				TotalAmount:    180000,
			},
		},
		{
			name:     "discount does not change the free-shipping threshold check",
			lines:    []cartLine{activeLine("Astrox 88D", 3, 200000, 10)},
			coupon:   percentCoupon(10),
			shipping: ShippingPolicy{Fee: 30000, FreeThreshold: 500000},
			want: pricing{
				Subtotal:       600000,
				DiscountAmount: 60000,
				TotalAmount:    540000,
			},
		},
		{
			name:  "free shipping coupon zeroes the fee",
			lines: []cartLine{activeLine("Astrox 88D", 1, 200000, 10)},
			coupon: &coupons.Coupon{
				ID: 2, Code: "FREESHIP", DiscountType: coupons.TypeFreeShipping,
				Active:    true,
				ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ValidUntil: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			},
			shipping: ShippingPolicy{Fee: 30000, FreeThreshold: 500000},
			want:     pricing{Subtotal: 200000, TotalAmount: 200000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := priceCart(tt.lines, tt.coupon, tt.userUsed, tt.shipping, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceCartRejectsIneligibleCoupon(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	lines := []cartLine{activeLine("Astrox 88D", 1, 200000, 10)}

	expired := percentCoupon(10)
	expired.ValidUntil = now.Add(-time.Hour)
	_, err := priceCart(lines, expired, 0, ShippingPolicy{}, now)
	assert.ErrorIs(t, err, coupons.ErrExpired)

	used := percentCoupon(10)
	used.PerUserLimit = 1
	_, err = priceCart(lines, used, 1, ShippingPolicy{}, now)
	assert.ErrorIs(t, err, coupons.ErrUserExceeded)
}
