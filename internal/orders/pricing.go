package orders

import (
	"fmt"
	"time"

	"shuttle-store/internal/coupons"
)

// pricing is the money breakdown of an order assembled from cart lines.
type pricing struct {
	Subtotal       int64
	DiscountAmount int64
	ShippingFee    int64
	TotalAmount    int64
}

// priceCart validates every cart line and computes the order totals from the
// captured unit prices. Any ineligible line or coupon aborts the whole order;
// no partial pricing is ever returned.
func priceCart(lines []cartLine, coupon *coupons.Coupon, userUsed int, shipping ShippingPolicy, now time.Time) (pricing, error) {
	if len(lines) == 0 {
		return pricing{}, ErrEmptyCart
	}

	var subtotal int64
	for _, line := range lines {
		if line.productStatus != "active" {
			return pricing{}, fmt.Errorf("%w: %s", ErrProductUnavailable, line.productName)
		}
		if line.quantity > line.stock {
			return pricing{}, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, line.productName, line.stock)
		}
		subtotal += line.unitPrice * int64(line.quantity)
	}

	p := pricing{
		Subtotal:    subtotal,
		ShippingFee: shipping.FeeFor(subtotal),
	}

	if coupon != nil {
		if err := coupons.CheckEligibility(*coupon, subtotal, userUsed, now); err != nil {
			return pricing{}, err
		}
		discount := coupons.CalculateDiscount(*coupon, subtotal)
		p.DiscountAmount = discount.Amount
		if discount.FreeShipping {
			p.ShippingFee = 0
		}
	}

	p.TotalAmount = p.Subtotal - p.DiscountAmount + p.ShippingFee
	return p, nil
}
