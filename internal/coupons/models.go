package coupons

import (
	"errors"
	"time"
)

// Discount types are mutually exclusive variants, not a numeric hierarchy.
const (
	TypePercentage   = "percentage"
	TypeFixedAmount  = "fixed_amount"
	TypeFreeShipping = "free_shipping"
)

var (
	ErrNotFound      = errors.New("coupon not found")
	ErrInactive      = errors.New("coupon is not active")
	ErrNotStarted    = errors.New("coupon is not valid yet")
	ErrExpired       = errors.New("coupon has expired")
	ErrUsageExceeded = errors.New("coupon usage limit reached")
	ErrUserExceeded  = errors.New("coupon already used by this user")
	ErrMinimumOrder  = errors.New("order amount below coupon minimum")
	ErrDuplicate     = errors.New("coupon code already exists")
)

type Coupon struct {
	ID                    int       `json:"id"`
	Code                  string    `json:"code"`
	Description           string    `json:"description"`
	DiscountType          string    `json:"discount_type"`
	DiscountValue         int64     `json:"discount_value"`
	MinimumOrderAmount    *int64    `json:"minimum_order_amount,omitempty"`
	MaximumDiscountAmount *int64    `json:"maximum_discount_amount,omitempty"`
	UsageLimit            *int      `json:"usage_limit,omitempty"`
	UsedCount             int       `json:"used_count"`
	PerUserLimit          int       `json:"per_user_limit"`
	ValidFrom             time.Time `json:"valid_from"`
	ValidUntil            time.Time `json:"valid_until"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type NewCoupon struct {
	Code                  string    `json:"code" validate:"required"`
	Description           string    `json:"description"`
	DiscountType          string    `json:"discount_type" validate:"required,oneof=percentage fixed_amount free_shipping"`
	DiscountValue         int64     `json:"discount_value" validate:"min=0"`
	MinimumOrderAmount    *int64    `json:"minimum_order_amount"`
	MaximumDiscountAmount *int64    `json:"maximum_discount_amount"`
	UsageLimit            *int      `json:"usage_limit"`
	PerUserLimit          int       `json:"per_user_limit" validate:"min=0"`
	ValidFrom             time.Time `json:"valid_from" validate:"required"`
	ValidUntil            time.Time `json:"valid_until" validate:"required"`
	Active                *bool     `json:"active"`
}

// Discount is the outcome of applying a coupon to an order subtotal.
type Discount struct {
	// Amount is the monetary reduction, zero for free-shipping coupons.
	Amount int64 `json:"amount"`
	// FreeShipping marks a shipping-fee waiver.
	FreeShipping bool `json:"free_shipping"`
}

// Result is what validation returns to callers previewing a coupon.
type Result struct {
	Valid    bool     `json:"valid"`
	Message  string   `json:"message"`
	Coupon   *Coupon  `json:"coupon,omitempty"`
	Discount Discount `json:"discount"`
}
