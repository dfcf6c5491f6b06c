package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"shuttle-store/internal/products"
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

// AddItem puts a product into the owner's cart, capturing the current catalog
// price. Adding the same product+attributes again bumps the quantity instead of
// creating a second line.
func (c *Conf) AddItem(ctx context.Context, owner Owner, productID string, quantity int, attrs map[string]string) error {
	if !owner.Valid() {
		return fmt.Errorf("cart owner must have exactly one of user id or session id")
	}

	attrsJSON, err := marshalAttrs(attrs)
	if err != nil {
		return err
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		var price int64
		var stock int
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT price, stock_quantity, status FROM products WHERE id = $1 FOR UPDATE`,
			productID,
		).Scan(&price, &stock, &status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductUnavailable
			}
			return fmt.Errorf("failed to query product: %w", err)
		}
		if status != products.StatusActive {
			return ErrProductUnavailable
		}

		// Existing line for the same product and attribute selection.
		queryLine := `
			SELECT id, quantity
			FROM cart_items
			WHERE ` + ownerClause(owner, "", 3) + `
			  AND product_id = $1
			  AND selected_attributes IS NOT DISTINCT FROM $2::jsonb
			FOR UPDATE`

		var lineID, existing int
		err = tx.QueryRowContext(ctx, queryLine, productID, attrsJSON, ownerArg(owner)).Scan(&lineID, &existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if quantity > stock {
				return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, stock)
			}
			insert := `
				INSERT INTO cart_items (user_id, session_id, product_id, quantity, selected_attributes, unit_price, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`
			_, err = tx.ExecContext(ctx, insert,
				nullable(owner.UserID), nullable(owner.SessionID), productID, quantity, attrsJSON, price)
			if err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to query cart item: %w", err)
		default:
			newQuantity := existing + quantity
			if newQuantity > stock {
				return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, newQuantity, stock)
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2`,
				newQuantity, lineID)
			if err != nil {
				return fmt.Errorf("failed to update cart item quantity: %w", err)
			}
		}
		return nil
	})
}

// Get returns the owner's cart with line subtotals computed from the captured
// unit price. CurrentPrice carries the live catalog price so clients can show
// drift without the cart silently repricing itself.
func (c *Conf) Get(ctx context.Context, owner Owner) (Cart, error) {
	if !owner.Valid() {
		return Cart{}, fmt.Errorf("cart owner must have exactly one of user id or session id")
	}

	query := `
		SELECT ci.id, ci.product_id, p.name, p.image_url, ci.quantity,
			ci.selected_attributes, ci.unit_price, p.price, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ` + ownerClause(owner, "ci", 1) + `
		ORDER BY ci.id`

	rows, err := c.db.QueryContext(ctx, query, ownerArg(owner))
	if err != nil {
		return Cart{}, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	cart := Cart{Items: []Item{}}
	for rows.Next() {
		var item Item
		var attrsJSON []byte
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.ProductImage,
			&item.Quantity, &attrsJSON, &item.UnitPrice, &item.CurrentPrice, &item.UpdatedAt); err != nil {
			return Cart{}, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &item.SelectedAttributes); err != nil {
				return Cart{}, fmt.Errorf("failed to decode cart item attributes: %w", err)
			}
		}
		item.Subtotal = item.UnitPrice * int64(item.Quantity)
		cart.Subtotal += item.Subtotal
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, fmt.Errorf("error iterating cart items: %w", err)
	}
	return cart, nil
}

// UpdateQuantity sets a line's quantity, bounded by current stock.
func (c *Conf) UpdateQuantity(ctx context.Context, owner Owner, itemID int, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, owner, itemID)
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT p.stock_quantity
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.id = $1 AND ` + ownerClause(owner, "ci", 2) + `
			FOR UPDATE OF ci`

		var stock int
		err := tx.QueryRowContext(ctx, query, itemID, ownerArg(owner)).Scan(&stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to query cart item: %w", err)
		}
		if quantity > stock {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, stock)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2`,
			quantity, itemID)
		if err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
}

func (c *Conf) RemoveItem(ctx context.Context, owner Owner, itemID int) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND ` + ownerClause(owner, "", 2)
	res, err := c.db.ExecContext(ctx, query, itemID, ownerArg(owner))
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (c *Conf) Clear(ctx context.Context, owner Owner) error {
	query := `DELETE FROM cart_items WHERE ` + ownerClause(owner, "", 1)
	if _, err := c.db.ExecContext(ctx, query, ownerArg(owner)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SyncPrices re-captures the live catalog price on every line. This is the
// explicit "update prices" operation; nothing invalidates captured prices
// automatically.
func (c *Conf) SyncPrices(ctx context.Context, owner Owner) (int, error) {
	query := `
		UPDATE cart_items ci
		SET unit_price = p.price, updated_at = NOW()
		FROM products p
		WHERE p.id = ci.product_id
		  AND ci.unit_price <> p.price
		  AND ` + ownerClause(owner, "ci", 1)

	res, err := c.db.ExecContext(ctx, query, ownerArg(owner))
	if err != nil {
		return 0, fmt.Errorf("failed to sync cart prices: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(rows), nil
}

// MergeGuestCart re-keys a guest session's lines to the user on login. Lines
// the user already has for the same product+attributes are summed, bounded by
// current stock, and the guest line dropped; the user's captured price wins.
func (c *Conf) MergeGuestCart(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return fmt.Errorf("both session id and user id are required for a merge")
	}

	return c.withTx(ctx, func(tx *sql.Tx) error {
		// Pair each guest line with the user's line for the same
		// product+attributes, locking both sides.
		pairQuery := `
			SELECT g.id, g.quantity, u.id, u.quantity, p.stock_quantity
			FROM cart_items g
			JOIN cart_items u ON u.user_id = $1
			  AND u.product_id = g.product_id
			  AND u.selected_attributes IS NOT DISTINCT FROM g.selected_attributes
			JOIN products p ON p.id = g.product_id
			WHERE g.session_id = $2
			FOR UPDATE OF g, u`

		rows, err := tx.QueryContext(ctx, pairQuery, userID, sessionID)
		if err != nil {
			return fmt.Errorf("failed to query duplicate cart lines: %w", err)
		}

		type mergedLine struct {
			guestID, userLineID, quantity int
		}
		var merged []mergedLine
		for rows.Next() {
			var guestID, guestQty, userLineID, userQty, stock int
			if err := rows.Scan(&guestID, &guestQty, &userLineID, &userQty, &stock); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan duplicate cart line: %w", err)
			}
			merged = append(merged, mergedLine{
				guestID:    guestID,
				userLineID: userLineID,
				quantity:   mergedQuantity(userQty, guestQty, stock),
			})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating duplicate cart lines: %w", err)
		}

		for _, m := range merged {
			_, err := tx.ExecContext(ctx,
				`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2`,
				m.quantity, m.userLineID)
			if err != nil {
				return fmt.Errorf("failed to merge duplicate cart lines: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, m.guestID); err != nil {
				return fmt.Errorf("failed to drop merged guest line: %w", err)
			}
		}

		rekey := `
			UPDATE cart_items
			SET user_id = $1, session_id = NULL, updated_at = NOW()
			WHERE session_id = $2`
		if _, err := tx.ExecContext(ctx, rekey, userID, sessionID); err != nil {
			return fmt.Errorf("failed to rekey guest cart: %w", err)
		}
		return nil
	})
}

// mergedQuantity combines a guest line into the user's line for the same
// product. The sum is bounded by current stock, but the merge never shrinks
// the user's existing line; a login must not fail over a stale cart.
func mergedQuantity(userQty, guestQty, stock int) int {
	q := userQty + guestQty
	if q > stock {
		q = stock
	}
	if q < userQty {
		q = userQty
	}
	return q
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}

// ownerClause builds the user-or-session predicate with the owner value bound
// at the given placeholder position.
func ownerClause(owner Owner, prefix string, pos int) string {
	col := "session_id"
	if owner.UserID != "" {
		col = "user_id"
	}
	if prefix != "" {
		col = prefix + "." + col
	}
	return fmt.Sprintf("%s = $%d", col, pos)
}

func ownerArg(owner Owner) any {
	if owner.UserID != "" {
		return owner.UserID
	}
	return owner.SessionID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalAttrs(attrs map[string]string) (any, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	return b, nil
}
