package products

import "time"

// Product statuses. Only active products can be carted or ordered.
const (
	StatusActive       = "active"
	StatusInactive     = "inactive"
	StatusDiscontinued = "discontinued"
)

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	CategoryID     *int      `json:"category_id"`
	BrandID        *int      `json:"brand_id"`
	Price          int64     `json:"price"`
	CompareAtPrice *int64    `json:"compare_at_price,omitempty"`
	StockQuantity  int       `json:"stock_quantity"`
	Status         string    `json:"status"`
	IsFeatured     bool      `json:"is_featured"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type NewProduct struct {
	Name           string `json:"name" validate:"required"`
	Slug           string `json:"slug" validate:"required"`
	Description    string `json:"description"`
	CategoryID     *int   `json:"category_id"`
	BrandID        *int   `json:"brand_id"`
	Price          int64  `json:"price" validate:"required,min=0"`
	CompareAtPrice *int64 `json:"compare_at_price"`
	StockQuantity  int    `json:"stock_quantity" validate:"min=0"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
	IsFeatured     bool   `json:"is_featured"`
	ImageURL       string `json:"image_url"`
}

// ListFilter narrows and pages the catalog listing.
type ListFilter struct {
	Name       string
	CategoryID int
	BrandID    int
	MinPrice   int64
	MaxPrice   int64
	Featured   bool
	Limit      int
	Offset     int
	Sort       string
	Order      string
}
