package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shuttle-store/internal/cart"
	"shuttle-store/internal/coupons"
	"shuttle-store/internal/email"

	"github.com/google/uuid"
)

type Conf struct {
	db       *sql.DB
	coupons  coupons.Conf
	shipping ShippingPolicy
}

func NewConf(db *sql.DB, couponConf coupons.Conf, shipping ShippingPolicy) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db, coupons: couponConf, shipping: shipping}, nil
}

// CreateFromCart converts the owner's cart into an order in one transaction:
// line validation, totals, stock decrement, coupon redemption, cart clearing
// and confirmation-email enqueue all commit or roll back together.
func (c *Conf) CreateFromCart(ctx context.Context, req CheckoutRequest, owner cart.Owner) (Order, error) {
	if !owner.Valid() {
		return Order{}, fmt.Errorf("order owner must have exactly one of user id or session id")
	}

	// The coupon row is loaded up front; eligibility runs inside the
	// transaction and the usage cap is re-guarded by the conditional redeem.
	var coupon *coupons.Coupon
	if req.CouponCode != "" {
		loaded, err := c.coupons.GetByCode(ctx, req.CouponCode)
		if err != nil {
			return Order{}, err
		}
		coupon = &loaded
	}

	var order Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		lines, err := lockCartLines(ctx, tx, owner)
		if err != nil {
			return err
		}

		userUsed := 0
		if coupon != nil && owner.UserID != "" {
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
				coupon.ID, owner.UserID).Scan(&userUsed)
			if err != nil {
				return fmt.Errorf("failed to count coupon usage: %w", err)
			}
		}

		totals, err := priceCart(lines, coupon, userUsed, c.shipping, time.Now())
		if err != nil {
			return err
		}

		var couponID *int
		var couponCode *string
		if coupon != nil {
			couponID = &coupon.ID
			couponCode = &coupon.Code
		}

		orderID := uuid.NewString()
		orderNumber := newOrderNumber()
		insertOrder := `
			INSERT INTO orders (id, order_number, user_id, customer_name, customer_email,
				customer_phone, shipping_address, payment_method, status, payment_status,
				subtotal, discount_amount, shipping_fee, total_amount, coupon_id, coupon_code,
				notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', 'unpaid',
				$9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
			RETURNING ` + orderColumns

		err = tx.QueryRowContext(ctx, insertOrder,
			orderID, orderNumber, nullable(owner.UserID), req.CustomerName, req.CustomerEmail,
			req.CustomerPhone, req.ShippingAddress, req.PaymentMethod,
			totals.Subtotal, totals.DiscountAmount, totals.ShippingFee, totals.TotalAmount,
			couponID, couponCode, req.Notes,
		).Scan(scanOrderDest(&order)...)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, line := range lines {
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
				 WHERE id = $2 AND stock_quantity >= $1`,
				line.quantity, line.productID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if rows == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, line.productName)
			}

			item := OrderItem{
				OrderID:     orderID,
				ProductID:   line.productID,
				ProductName: line.productName,
				Quantity:    line.quantity,
				UnitPrice:   line.unitPrice,
				Subtotal:    line.unitPrice * int64(line.quantity),
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal, selected_attributes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 RETURNING id`,
				item.OrderID, item.ProductID, item.ProductName, item.Quantity,
				item.UnitPrice, item.Subtotal, line.attrsJSON,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
			if len(line.attrsJSON) > 0 {
				if err := json.Unmarshal(line.attrsJSON, &item.SelectedAttributes); err != nil {
					return fmt.Errorf("failed to decode item attributes: %w", err)
				}
			}
			order.Items = append(order.Items, item)
		}

		if coupon != nil {
			if err := c.coupons.Redeem(ctx, tx, coupon.ID, owner.UserID, orderID); err != nil {
				return err
			}
		}

		clearCart := `DELETE FROM cart_items WHERE `
		if owner.UserID != "" {
			clearCart += `user_id = $1`
		} else {
			clearCart += `session_id = $1`
		}
		if _, err := tx.ExecContext(ctx, clearCart, ownerArg(owner)); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		msg := email.OrderConfirmation(req.CustomerEmail, req.CustomerName, orderNumber, totals.TotalAmount)
		if err := email.Enqueue(ctx, tx, msg); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// UpdateStatus moves an order along the transition graph, stamping timestamps
// and restocking on cancellation. The status-update email is enqueued in the
// same transaction.
func (c *Conf) UpdateStatus(ctx context.Context, orderID, newStatus string) (Order, error) {
	if !IsValidStatus(newStatus) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	var order Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to query order: %w", err)
		}

		if !CanTransition(current, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
		}

		query := `UPDATE orders SET status = $1, updated_at = NOW()` + transitionStamp(newStatus) + `
			WHERE id = $2
			RETURNING ` + orderColumns
		if err := tx.QueryRowContext(ctx, query, newStatus, orderID).Scan(scanOrderDest(&order)...); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if newStatus == StatusCancelled {
			if err := restockItems(ctx, tx, orderID); err != nil {
				return err
			}
		}

		if order.CustomerEmail != "" {
			msg := email.OrderStatusUpdate(order.CustomerEmail, order.CustomerName, order.OrderNumber, newStatus)
			if err := email.Enqueue(ctx, tx, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// CancelByCustomer lets the owner cancel while the order is still pending or
// confirmed.
func (c *Conf) CancelByCustomer(ctx context.Context, orderID, userID string) (Order, error) {
	order, err := c.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return Order{}, ErrNotFound
	}
	if order.Status != StatusPending && order.Status != StatusConfirmed {
		return Order{}, ErrNotCancellable
	}
	return c.UpdateStatus(ctx, orderID, StatusCancelled)
}

// MarkPaid records payment settlement from the gateway webhook and confirms a
// still-pending order.
func (c *Conf) MarkPaid(ctx context.Context, orderID string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		var status, customerName, customerEmail, orderNumber string
		err := tx.QueryRowContext(ctx,
			`SELECT status, customer_name, customer_email, order_number
			 FROM orders WHERE id = $1 FOR UPDATE`, orderID).
			Scan(&status, &customerName, &customerEmail, &orderNumber)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to query order: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET payment_status = 'paid', updated_at = NOW() WHERE id = $1`, orderID)
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		if status == StatusPending {
			_, err = tx.ExecContext(ctx,
				`UPDATE orders SET status = 'confirmed', updated_at = NOW() WHERE id = $1`, orderID)
			if err != nil {
				return fmt.Errorf("failed to confirm paid order: %w", err)
			}
			if customerEmail != "" {
				msg := email.OrderStatusUpdate(customerEmail, customerName, orderNumber, StatusConfirmed)
				if err := email.Enqueue(ctx, tx, msg); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// AttachStripeSession links a created checkout session to the order.
func (c *Conf) AttachStripeSession(ctx context.Context, orderID, sessionID string) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE orders SET stripe_session_id = $1, updated_at = NOW() WHERE id = $2`,
		sessionID, orderID)
	if err != nil {
		return fmt.Errorf("failed to attach stripe session: %w", err)
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

func (c *Conf) GetByID(ctx context.Context, orderID string) (Order, error) {
	var order Order
	err := c.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID).Scan(scanOrderDest(&order)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := c.itemsFor(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

func (c *Conf) GetByOrderNumber(ctx context.Context, orderNumber string) (Order, error) {
	var id string
	err := c.db.QueryRowContext(ctx,
		`SELECT id FROM orders WHERE order_number = $1`, strings.ToUpper(strings.TrimSpace(orderNumber))).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to query order by number: %w", err)
	}
	return c.GetByID(ctx, id)
}

func (c *Conf) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, int, error) {
	return c.list(ctx, `WHERE user_id = $1`, []any{userID}, limit, offset)
}

func (c *Conf) ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	if status != "" {
		return c.list(ctx, `WHERE status = $1`, []any{status}, limit, offset)
	}
	return c.list(ctx, "", nil, limit, offset)
}

func (c *Conf) list(ctx context.Context, where string, args []any, limit, offset int) ([]Order, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM orders`
	if where != "" {
		countQuery += " " + where
	}
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + orderColumns + ` FROM orders`
	if where != "" {
		query += " " + where
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var order Order
		if err := rows.Scan(scanOrderDest(&order)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	return list, total, nil
}

func (c *Conf) itemsFor(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, selected_attributes
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		var attrsJSON []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal, &attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &item.SelectedAttributes); err != nil {
				return nil, fmt.Errorf("failed to decode item attributes: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func restockItems(ctx context.Context, tx *sql.Tx, orderID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products p
		 SET stock_quantity = p.stock_quantity + oi.quantity, updated_at = NOW()
		 FROM order_items oi
		 WHERE oi.order_id = $1 AND oi.product_id = p.id`, orderID)
	if err != nil {
		return fmt.Errorf("failed to restock cancelled order: %w", err)
	}
	return nil
}

// transitionStamp returns the extra column updates a status transition
// carries: lifecycle timestamps, and the payment flip on refund.
func transitionStamp(status string) string {
	switch status {
	case StatusShipped:
		return ", shipped_at = NOW()"
	case StatusDelivered:
		return ", delivered_at = NOW()"
	case StatusCancelled:
		return ", cancelled_at = NOW()"
	case StatusRefunded:
		return ", payment_status = 'refunded'"
	default:
		return ""
	}
}

type cartLine struct {
	productID     string
	productName   string
	productStatus string
	quantity      int
	unitPrice     int64
	stock         int
	attrsJSON     []byte
}

// lockCartLines loads the owner's cart joined to products, locking both the
// cart rows and the product rows for the rest of the transaction.
func lockCartLines(ctx context.Context, tx *sql.Tx, owner cart.Owner) ([]cartLine, error) {
	ownerCol := "ci.session_id"
	if owner.UserID != "" {
		ownerCol = "ci.user_id"
	}
	query := `
		SELECT ci.product_id, p.name, p.status, ci.quantity, ci.unit_price, p.stock_quantity, ci.selected_attributes
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ` + ownerCol + ` = $1
		ORDER BY ci.id
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, ownerArg(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.productID, &line.productName, &line.productStatus,
			&line.quantity, &line.unitPrice, &line.stock, &line.attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
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

func newOrderNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), fragment)
}

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
		shipping_address, payment_method, status, payment_status, subtotal, discount_amount,
		shipping_fee, total_amount, coupon_id, coupon_code, notes, stripe_session_id,
		shipped_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrderDest(o *Order) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.PaymentMethod, &o.Status, &o.PaymentStatus, &o.Subtotal, &o.DiscountAmount,
		&o.ShippingFee, &o.TotalAmount, &o.CouponID, &o.CouponCode, &o.Notes, &o.StripeSessionID,
		&o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ownerArg(owner cart.Owner) any {
	if owner.UserID != "" {
		return owner.UserID
	}
	return owner.SessionID
}
