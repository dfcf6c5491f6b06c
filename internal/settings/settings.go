package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrBannerNotFound = errors.New("banner not found")

type Banner struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewBanner struct {
	Title    string `json:"title" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
	Active   *bool  `json:"active"`
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

// GetAll returns every setting as a key/value map.
func (c *Conf) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Upsert writes a batch of settings.
func (c *Conf) Upsert(ctx context.Context, values map[string]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	for k, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, k, v)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert setting %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

const bannerColumns = `id, title, image_url, link_url, position, active, created_at, updated_at`

func (c *Conf) ListBanners(ctx context.Context, activeOnly bool) ([]Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY position, id`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query banners: %w", err)
	}
	defer rows.Close()

	var list []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (c *Conf) InsertBanner(ctx context.Context, nb NewBanner) (Banner, error) {
	active := true
	if nb.Active != nil {
		active = *nb.Active
	}

	query := `
		INSERT INTO banners (title, image_url, link_url, position, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + bannerColumns

	var b Banner
	err := c.db.QueryRowContext(ctx, query, nb.Title, nb.ImageURL, nb.LinkURL, nb.Position, active).
		Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Banner{}, fmt.Errorf("failed to insert banner: %w", err)
	}
	return b, nil
}

func (c *Conf) UpdateBanner(ctx context.Context, id int, nb NewBanner) (Banner, error) {
	active := true
	if nb.Active != nil {
		active = *nb.Active
	}

	query := `
		UPDATE banners
		SET title = $1, image_url = $2, link_url = $3, position = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + bannerColumns

	var b Banner
	err := c.db.QueryRowContext(ctx, query, nb.Title, nb.ImageURL, nb.LinkURL, nb.Position, active, id).
		Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Banner{}, ErrBannerNotFound
		}
		return Banner{}, fmt.Errorf("failed to update banner: %w", err)
	}
	return b, nil
}

func (c *Conf) DeleteBanner(ctx context.Context, id int) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrBannerNotFound
	}
	return nil
}
