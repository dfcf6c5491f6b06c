package payments

import (
	"context"
	"errors"
	"fmt"

	"shuttle-store/config"
	"shuttle-store/internal/orders"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

var (
	ErrNotConfigured = errors.New("card payments are not configured")
	ErrNotCardOrder  = errors.New("order was not placed with card payment")
	ErrAlreadyPaid   = errors.New("order is already paid")
)

// Method describes one way to pay at checkout.
type Method struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Conf struct {
	cfg    config.StripeConfig
	orders *orders.Conf
}

func NewConf(cfg config.StripeConfig, orderConf *orders.Conf) (*Conf, error) {
	if orderConf == nil {
		return nil, fmt.Errorf("order conf is nil")
	}
	if cfg.Enabled() {
		stripe.Key = cfg.Key
	}
	return &Conf{cfg: cfg, orders: orderConf}, nil
}

// Methods lists the payment options the storefront offers.
func (c *Conf) Methods() []Method {
	methods := []Method{
		{Code: "cod", Name: "Cash on delivery", Description: "Pay the courier when your order arrives"},
		{Code: "bank_transfer", Name: "Bank transfer", Description: "Transfer the order total to our account"},
	}
	if c.cfg.Enabled() {
		methods = append(methods, Method{Code: "card", Name: "Card", Description: "Pay online by card"})
	}
	return methods
}

// CreateCheckoutSession builds a Stripe checkout session for a card order and
// links it to the order row. Returns the hosted payment URL.
func (c *Conf) CreateCheckoutSession(ctx context.Context, orderID string) (string, error) {
	if !c.cfg.Enabled() {
		return "", ErrNotConfigured
	}

	order, err := c.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentMethod != "card" {
		return "", ErrNotCardOrder
	}
	if order.PaymentStatus == orders.PaymentPaid {
		return "", ErrAlreadyPaid
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	if order.ShippingFee > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(order.ShippingFee),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		SubmitType:    stripe.String("pay"),
		Currency:      stripe.String(string(stripe.CurrencyVND)),
		CustomerEmail: stripe.String(order.CustomerEmail),
		LineItems:     lineItems,
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(c.cfg.SuccessURL),
		CancelURL:     stripe.String(c.cfg.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"order_id":     order.ID,
				"order_number": order.OrderNumber,
			},
		},
	}
	if order.DiscountAmount > 0 {
		// Stripe has no negative line items, so a discounted order is charged
		// as a single line carrying the final total.
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(order.TotalAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order " + order.OrderNumber),
				},
			},
			Quantity: stripe.Int64(1),
		}}
	}

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe checkout session: %w", err)
	}

	if err := c.orders.AttachStripeSession(ctx, order.ID, s.ID); err != nil {
		return "", err
	}
	return s.URL, nil
}

// HandlePaymentSucceeded settles the order referenced by a succeeded payment
// intent's metadata.
func (c *Conf) HandlePaymentSucceeded(ctx context.Context, intent stripe.PaymentIntent) error {
	orderID := intent.Metadata["order_id"]
	if orderID == "" {
		return fmt.Errorf("payment intent %s carries no order_id metadata", intent.ID)
	}
	return c.orders.MarkPaid(ctx, orderID)
}
