package coupons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

const couponColumns = `id, code, description, discount_type, discount_value,
		minimum_order_amount, maximum_discount_amount, usage_limit, used_count,
		per_user_limit, valid_from, valid_until, active, created_at, updated_at`

// Validate checks a code against every eligibility rule and previews the
// discount. It never consumes allowance; redemption happens at checkout.
func (c *Conf) Validate(ctx context.Context, code string, orderAmount int64, userID string) (Result, error) {
	coupon, err := c.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{Valid: false, Message: FailureMessage(ErrNotFound)}, nil
		}
		return Result{}, err
	}

	userUsed := 0
	if userID != "" {
		userUsed, err = c.countUserUsage(ctx, coupon.ID, userID)
		if err != nil {
			return Result{}, err
		}
	}

	if err := CheckEligibility(coupon, orderAmount, userUsed, time.Now()); err != nil {
		return Result{Valid: false, Message: FailureMessage(err)}, nil
	}

	return Result{
		Valid:    true,
		Message:  "Coupon applied",
		Coupon:   &coupon,
		Discount: CalculateDiscount(coupon, orderAmount),
	}, nil
}

// Redeem consumes one use inside the caller's transaction: the conditional
// UPDATE keeps used_count under the cap even when checkouts race.
func (c *Conf) Redeem(ctx context.Context, tx *sql.Tx, couponID int, userID, orderID string) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`

	res, err := tx.ExecContext(ctx, query, couponID)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUsageExceeded
	}

	if userID != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO coupon_usages (coupon_id, user_id, order_id, used_at) VALUES ($1, $2, $3, NOW())`,
			couponID, userID, orderID)
		if err != nil {
			return fmt.Errorf("failed to record coupon usage: %w", err)
		}
	}
	return nil
}

func (c *Conf) GetByCode(ctx context.Context, code string) (Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE UPPER(code) = UPPER($1)`

	var coupon Coupon
	err := c.db.QueryRowContext(ctx, query, strings.TrimSpace(code)).Scan(scanDest(&coupon)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		return Coupon{}, fmt.Errorf("failed to query coupon: %w", err)
	}
	return coupon, nil
}

func (c *Conf) countUserUsage(ctx context.Context, couponID int, userID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return count, nil
}

func (c *Conf) Insert(ctx context.Context, nc NewCoupon) (Coupon, error) {
	active := true
	if nc.Active != nil {
		active = *nc.Active
	}
	perUser := nc.PerUserLimit
	if perUser == 0 {
		perUser = 1
	}

	query := `
		INSERT INTO coupons (code, description, discount_type, discount_value,
			minimum_order_amount, maximum_discount_amount, usage_limit, per_user_limit,
			valid_from, valid_until, active, created_at, updated_at)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + couponColumns

	var coupon Coupon
	err := c.db.QueryRowContext(ctx, query,
		strings.TrimSpace(nc.Code), nc.Description, nc.DiscountType, nc.DiscountValue,
		nc.MinimumOrderAmount, nc.MaximumDiscountAmount, nc.UsageLimit, perUser,
		nc.ValidFrom, nc.ValidUntil, active,
	).Scan(scanDest(&coupon)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Coupon{}, ErrDuplicate
		}
		return Coupon{}, fmt.Errorf("failed to insert coupon: %w", err)
	}
	return coupon, nil
}

func (c *Conf) List(ctx context.Context) ([]Coupon, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var list []Coupon
	for rows.Next() {
		var coupon Coupon
		if err := rows.Scan(scanDest(&coupon)...); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		list = append(list, coupon)
	}
	return list, rows.Err()
}

func (c *Conf) Update(ctx context.Context, id int, nc NewCoupon) (Coupon, error) {
	active := true
	if nc.Active != nil {
		active = *nc.Active
	}
	perUser := nc.PerUserLimit
	if perUser == 0 {
		perUser = 1
	}

	query := `
		UPDATE coupons
		SET code = UPPER($1), description = $2, discount_type = $3, discount_value = $4,
			minimum_order_amount = $5, maximum_discount_amount = $6, usage_limit = $7,
			per_user_limit = $8, valid_from = $9, valid_until = $10, active = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING ` + couponColumns

	var coupon Coupon
	err := c.db.QueryRowContext(ctx, query,
		strings.TrimSpace(nc.Code), nc.Description, nc.DiscountType, nc.DiscountValue,
		nc.MinimumOrderAmount, nc.MaximumDiscountAmount, nc.UsageLimit, perUser,
		nc.ValidFrom, nc.ValidUntil, active, id,
	).Scan(scanDest(&coupon)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Coupon{}, ErrDuplicate
		}
		return Coupon{}, fmt.Errorf("failed to update coupon: %w", err)
	}
	return coupon, nil
}

func (c *Conf) Delete(ctx context.Context, id int) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
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

func scanDest(c *Coupon) []any {
	return []any{
		&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue,
		&c.MinimumOrderAmount, &c.MaximumDiscountAmount, &c.UsageLimit, &c.UsedCount,
		&c.PerUserLimit, &c.ValidFrom, &c.ValidUntil, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	}
}
