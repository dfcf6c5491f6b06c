package coupons

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt64(v int64) *int64 { return &v }
func ptrInt(v int) *int       { return &v }

func baseCoupon() Coupon {
	return Coupon{
		ID:            1,
		Code:          "SAVE10",
		DiscountType:  TypePercentage,
		DiscountValue: 10,
		PerUserLimit:  1,
		Active:        true,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mutate      func(*Coupon)
		orderAmount int64
		userUsed    int
		want        error
	}{
		{
			name:        "valid coupon passes",
			mutate:      func(*Coupon) {},
			orderAmount: 200000,
		},
		{
			name:        "inactive coupon",
			mutate:      func(c *Coupon) { c.Active = false },
			orderAmount: 200000,
			want:        ErrInactive,
		},
		{
			name: "not started yet",
			mutate: func(c *Coupon) {
				c.ValidFrom = now.Add(24 * time.Hour)
			},
			orderAmount: 200000,
			want:        ErrNotStarted,
		},
		{
			name: "expired coupon",
			mutate: func(c *Coupon) {
				c.ValidUntil = now.Add(-24 * time.Hour)
			},
			orderAmount: 200000,
			want:        ErrExpired,
		},
		{
			name: "usage limit reached",
			mutate: func(c *Coupon) {
				c.UsageLimit = ptrInt(100)
				c.UsedCount = 100
			},
			orderAmount: 200000,
			want:        ErrUsageExceeded,
		},
		{
			name: "one redemption left",
			mutate: func(c *Coupon) {
				c.UsageLimit = ptrInt(100)
				c.UsedCount = 99
			},
			orderAmount: 200000,
		},
		{
			name: "below minimum order amount",
			mutate: func(c *Coupon) {
				c.MinimumOrderAmount = ptrInt64(500000)
			},
			orderAmount: 200000,
			want:        ErrMinimumOrder,
		},
		{
			name: "exactly at minimum order amount",
			mutate: func(c *Coupon) {
				c.MinimumOrderAmount = ptrInt64(200000)
			},
			orderAmount: 200000,
		},
		{
			name:        "user already redeemed",
			mutate:      func(*Coupon) {},
			orderAmount: 200000,
			userUsed:    1,
			want:        ErrUserExceeded,
		},
		{
			name: "unlimited per-user usage",
			mutate: func(c *Coupon) {
				c.PerUserLimit = 0
			},
			orderAmount: 200000,
			userUsed:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			tt.mutate(&c)

			err := CheckEligibility(c, tt.orderAmount, tt.userUsed, now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name        string
		coupon      Coupon
		orderAmount int64
		want        Discount
	}{
		{
			name:        "ten percent of 200000",
			coupon:      Coupon{DiscountType: TypePercentage, DiscountValue: 10},
			orderAmount: 200000,
			want:        Discount{Amount: 20000},
		},
		{
			name: "percentage clamped to maximum",
			coupon: Coupon{
				DiscountType:          TypePercentage,
				DiscountValue:         50,
				MaximumDiscountAmount: ptrInt64(30000),
			},
			orderAmount: 200000,
			want:        Discount{Amount: 30000},
		},
		{
			name:        "full percentage never exceeds order amount",
			coupon:      Coupon{DiscountType: TypePercentage, DiscountValue: 100},
			orderAmount: 150000,
			want:        Discount{Amount: 150000},
		},
		{
			name:        "fixed amount",
			coupon:      Coupon{DiscountType: TypeFixedAmount, DiscountValue: 50000},
			orderAmount: 200000,
			want:        Discount{Amount: 50000},
		},
		{
			name:        "fixed amount larger than order",
			coupon:      Coupon{DiscountType: TypeFixedAmount, DiscountValue: 500000},
			orderAmount: 200000,
			want:        Discount{Amount: 200000},
		},
		{
			name:        "free shipping grants no monetary discount",
			coupon:      Coupon{DiscountType: TypeFreeShipping, DiscountValue: 0},
			orderAmount: 200000,
			want:        Discount{FreeShipping: true},
		},
		{
			name:        "unknown type grants nothing",
			coupon:      Coupon{DiscountType: "bogus", DiscountValue: 10},
			orderAmount: 200000,
			want:        Discount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDiscount(tt.coupon, tt.orderAmount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFailureMessage(t *testing.T) {
	require.Equal(t, "This coupon has expired", FailureMessage(ErrExpired))
	require.Equal(t, "Coupon code not found", FailureMessage(ErrNotFound))
	require.Equal(t, "Coupon cannot be applied", FailureMessage(nil))
}

func TestFailureMessageUnwrapsSentinels(t *testing.T) {
	wrapped := fmt.Errorf("applying coupon: %w", ErrMinimumOrder)
	require.Equal(t, "Order amount does not meet the coupon minimum", FailureMessage(wrapped))

	deep := fmt.Errorf("checkout: %w", fmt.Errorf("coupon: %w", ErrUsageExceeded))
	require.Equal(t, "This coupon has reached its usage limit", FailureMessage(deep))
}
