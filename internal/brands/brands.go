package brands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("brand not found")
	ErrDuplicate = errors.New("brand already exists")
)

type Brand struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	LogoURL     string    `json:"logo_url"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewBrand struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
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

const brandColumns = `id, name, slug, logo_url, description, active, created_at, updated_at`

func (c *Conf) Insert(ctx context.Context, nb NewBrand) (Brand, error) {
	active := true
	if nb.Active != nil {
		active = *nb.Active
	}

	query := `
		INSERT INTO brands (name, slug, logo_url, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + brandColumns

	var b Brand
	err := c.db.QueryRowContext(ctx, query, nb.Name, nb.Slug, nb.LogoURL, nb.Description, active).
		Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.Description, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Brand{}, ErrDuplicate
		}
		return Brand{}, fmt.Errorf("failed to insert brand: %w", err)
	}
	return b, nil
}

func (c *Conf) GetByID(ctx context.Context, id int) (Brand, error) {
	var b Brand
	err := c.db.QueryRowContext(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.Description, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Brand{}, ErrNotFound
		}
		return Brand{}, fmt.Errorf("failed to query brand: %w", err)
	}
	return b, nil
}

func (c *Conf) List(ctx context.Context, activeOnly bool) ([]Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	var list []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.Description, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (c *Conf) Update(ctx context.Context, id int, nb NewBrand) (Brand, error) {
	active := true
	if nb.Active != nil {
		active = *nb.Active
	}

	query := `
		UPDATE brands
		SET name = $1, slug = $2, logo_url = $3, description = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + brandColumns

	var b Brand
	err := c.db.QueryRowContext(ctx, query, nb.Name, nb.Slug, nb.LogoURL, nb.Description, active, id).
		Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.Description, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Brand{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Brand{}, ErrDuplicate
		}
		return Brand{}, fmt.Errorf("failed to update brand: %w", err)
	}
	return b, nil
}

func (c *Conf) Delete(ctx context.Context, id int) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
