package kafka

import "time"

const (
	TopicOrderPlaced        = `orders.order-placed`
	TopicOrderStatusChanged = `orders.status-changed`
)

// OrderPlacedEvent is published once checkout commits.
type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id,omitempty"`
	TotalAmount int64     `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusChangedEvent is published on every admin status transition.
type OrderStatusChangedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	ChangedAt   time.Time `json:"changed_at"`
}
