package coupons

import (
	"errors"
	"time"
)

// CheckEligibility applies every validity rule to a loaded coupon. userUsed is
// how many times this user has already redeemed it; pass 0 for guests.
// The returned error is one of the package sentinels, nil when usable.
func CheckEligibility(c Coupon, orderAmount int64, userUsed int, now time.Time) error {
	if !c.Active {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotStarted
	}
	if now.After(c.ValidUntil) {
		return ErrExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrUsageExceeded
	}
	if c.MinimumOrderAmount != nil && orderAmount < *c.MinimumOrderAmount {
		return ErrMinimumOrder
	}
	if c.PerUserLimit > 0 && userUsed >= c.PerUserLimit {
		return ErrUserExceeded
	}
	return nil
}

// CalculateDiscount computes the reduction a coupon grants on an order amount.
// The result never exceeds the order amount, and percentage discounts are
// clamped to the coupon's maximum when one is set.
func CalculateDiscount(c Coupon, orderAmount int64) Discount {
	switch c.DiscountType {
	case TypePercentage:
		amount := orderAmount * c.DiscountValue / 100
		if c.MaximumDiscountAmount != nil && amount > *c.MaximumDiscountAmount {
			amount = *c.MaximumDiscountAmount
		}
		if amount > orderAmount {
			amount = orderAmount
		}
		return Discount{Amount: amount}
	case TypeFixedAmount:
		amount := c.DiscountValue
		if amount > orderAmount {
			amount = orderAmount
		}
		return Discount{Amount: amount}
	case TypeFreeShipping:
		return Discount{FreeShipping: true}
	default:
		return Discount{}
	}
}

// FailureMessage maps an eligibility sentinel, wrapped or not, to the
// user-facing message.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Coupon code not found"
	case errors.Is(err, ErrInactive):
		return "This coupon is no longer active"
	case errors.Is(err, ErrNotStarted):
		return "This coupon is not valid yet"
	case errors.Is(err, ErrExpired):
		return "This coupon has expired"
	case errors.Is(err, ErrUsageExceeded):
		return "This coupon has reached its usage limit"
	case errors.Is(err, ErrUserExceeded):
		return "You have already used this coupon"
	case errors.Is(err, ErrMinimumOrder):
		return "Order amount does not meet the coupon minimum"
	default:
		return "Coupon cannot be applied"
	}
}
