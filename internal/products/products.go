package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("product not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

const productColumns = `id, name, slug, description, category_id, brand_id, price,
		compare_at_price, stock_quantity, status, is_featured, image_url, created_at, updated_at`

func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	status := np.Status
	if status == "" {
		status = StatusActive
	}

	query := `
		INSERT INTO products (name, slug, description, category_id, brand_id, price,
			compare_at_price, stock_quantity, status, is_featured, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + productColumns

	var p Product
	err := c.db.QueryRowContext(ctx, query,
		np.Name, np.Slug, np.Description, np.CategoryID, np.BrandID, np.Price,
		np.CompareAtPrice, np.StockQuantity, status, np.IsFeatured, np.ImageURL,
	).Scan(scanDest(&p)...)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (c *Conf) GetProductByID(ctx context.Context, productID string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	err := c.db.QueryRowContext(ctx, query, productID).Scan(scanDest(&p)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (c *Conf) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	var p Product
	err := c.db.QueryRowContext(ctx, query, slug).Scan(scanDest(&p)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to query product by slug: %w", err)
	}
	return p, nil
}

func (c *Conf) UpdateProductInDB(ctx context.Context, productID string, p Product) (Product, error) {
	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, category_id = $4, brand_id = $5,
			price = $6, compare_at_price = $7, stock_quantity = $8, status = $9,
			is_featured = $10, image_url = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING ` + productColumns

	var updated Product
	err := c.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.Description, p.CategoryID, p.BrandID, p.Price,
		p.CompareAtPrice, p.StockQuantity, p.Status, p.IsFeatured, p.ImageURL, productID,
	).Scan(scanDest(&updated)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (c *Conf) DeleteProductFromDB(ctx context.Context, productID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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

// ListProductsFromDB filters, sorts and pages the catalog. The total count is
// returned alongside so handlers can shape pagination metadata.
func (c *Conf) ListProductsFromDB(ctx context.Context, f ListFilter) ([]Product, int, error) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.Name != "" {
		add("name ILIKE $%d", "%"+f.Name+"%")
	}
	if f.CategoryID > 0 {
		add("category_id = $%d", f.CategoryID)
	}
	if f.BrandID > 0 {
		add("brand_id = $%d", f.BrandID)
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if f.Featured {
		conditions = append(conditions, "is_featured = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Sort columns are whitelisted, never interpolated from raw input.
	sortColumn := map[string]string{
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
	}[f.Sort]
	if sortColumn == "" {
		sortColumn = "name"
	}
	direction := "ASC"
	if strings.EqualFold(f.Order, "desc") {
		direction = "DESC"
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, sortColumn, direction, len(args)-1, len(args))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(scanDest(&p)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return list, total, nil
}

// SearchActive returns active products whose name matches the term. Used by
// the chat assistant.
func (c *Conf) SearchActive(ctx context.Context, term string, limit int) ([]Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE status = 'active' AND name ILIKE $1
		ORDER BY is_featured DESC, name
		LIMIT $2`

	rows, err := c.db.QueryContext(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(scanDest(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanDest(p *Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.BrandID, &p.Price,
		&p.CompareAtPrice, &p.StockQuantity, &p.Status, &p.IsFeatured, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	}
}
