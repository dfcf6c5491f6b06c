package cart

import (
	"errors"
	"time"
)

var (
	ErrItemNotFound       = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// Owner identifies who a cart belongs to. Exactly one field is set: UserID for
// authenticated shoppers, SessionID for guests.
type Owner struct {
	UserID    string
	SessionID string
}

func (o Owner) Valid() bool {
	return (o.UserID == "") != (o.SessionID == "")
}

type Item struct {
	ID                 int               `json:"id"`
	ProductID          string            `json:"product_id"`
	ProductName        string            `json:"product_name"`
	ProductImage       string            `json:"product_image"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
	// UnitPrice is captured when the item is added and only changes through an
	// explicit price re-sync.
	UnitPrice    int64     `json:"unit_price"`
	CurrentPrice int64     `json:"current_price"`
	Subtotal     int64     `json:"subtotal"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Cart struct {
	Items    []Item `json:"items"`
	Subtotal int64  `json:"subtotal"`
}
