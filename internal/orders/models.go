package orders

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
)

type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"order_number"`
	UserID          *string     `json:"user_id,omitempty"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	Subtotal        int64       `json:"subtotal"`
	DiscountAmount  int64       `json:"discount_amount"`
	ShippingFee     int64       `json:"shipping_fee"`
	TotalAmount     int64       `json:"total_amount"`
	CouponID        *int        `json:"coupon_id,omitempty"`
	CouponCode      *string     `json:"coupon_code,omitempty"`
	Notes           string      `json:"notes"`
	StripeSessionID *string     `json:"stripe_session_id,omitempty"`
	ShippedAt       *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is an immutable snapshot of the product at order time.
type OrderItem struct {
	ID                 int               `json:"id"`
	OrderID            string            `json:"order_id"`
	ProductID          string            `json:"product_id"`
	ProductName        string            `json:"product_name"`
	Quantity           int               `json:"quantity"`
	UnitPrice          int64             `json:"unit_price"`
	Subtotal           int64             `json:"subtotal"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
}

type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=cod bank_transfer card"`
	Notes           string `json:"notes"`
	CouponCode      string `json:"coupon_code"`
}

// ShippingPolicy is the flat-fee shipping rule applied at checkout.
type ShippingPolicy struct {
	Fee           int64
	FreeThreshold int64
}

// FeeFor returns the shipping fee for a subtotal, before coupon waivers.
func (p ShippingPolicy) FeeFor(subtotal int64) int64 {
	if p.FreeThreshold > 0 && subtotal >= p.FreeThreshold {
		return 0
	}
	return p.Fee
}
