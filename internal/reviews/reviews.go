package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrInvalidStatus   = errors.New("invalid review status")
)

type Review struct {
	ID        int       `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Verified  bool      `json:"verified"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewReview struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// Insert creates a pending review. Verified is set when the user has a
// delivered order containing the product.
func (c *Conf) Insert(ctx context.Context, userID string, nr NewReview) (Review, error) {
	verified, err := c.hasDeliveredOrder(ctx, userID, nr.ProductID)
	if err != nil {
		return Review{}, err
	}

	query := `
		INSERT INTO reviews (product_id, user_id, rating, title, comment, verified, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW(), NOW())
		RETURNING id, product_id, user_id, rating, title, comment, verified, status, created_at, updated_at`

	var r Review
	err = c.db.QueryRowContext(ctx, query, nr.ProductID, userID, nr.Rating, nr.Title, nr.Comment, verified).
		Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment, &r.Verified, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Review{}, ErrAlreadyReviewed
		}
		return Review{}, fmt.Errorf("failed to insert review: %w", err)
	}
	return r, nil
}

// ListApproved returns a product's public reviews with reviewer names.
func (c *Conf) ListApproved(ctx context.Context, productID string) ([]Review, error) {
	query := `
		SELECT r.id, r.product_id, r.user_id, u.name, r.rating, r.title, r.comment,
			r.verified, r.status, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.status = 'approved'
		ORDER BY r.created_at DESC`

	rows, err := c.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var list []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Title,
			&r.Comment, &r.Verified, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// ListByStatus serves admin moderation queues.
func (c *Conf) ListByStatus(ctx context.Context, status string) ([]Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, title, comment, verified, status, created_at, updated_at
		FROM reviews
		WHERE status = $1
		ORDER BY created_at`

	rows, err := c.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var list []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment,
			&r.Verified, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// Moderate sets a review's status to approved or rejected.
func (c *Conf) Moderate(ctx context.Context, id int, status string) (Review, error) {
	if status != StatusApproved && status != StatusRejected {
		return Review{}, ErrInvalidStatus
	}

	query := `
		UPDATE reviews SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, product_id, user_id, rating, title, comment, verified, status, created_at, updated_at`

	var r Review
	err := c.db.QueryRowContext(ctx, query, status, id).
		Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment, &r.Verified, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, fmt.Errorf("failed to moderate review: %w", err)
	}
	return r, nil
}

func (c *Conf) Delete(ctx context.Context, id int) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Conf) hasDeliveredOrder(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'delivered'
		)`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return exists, nil
}
