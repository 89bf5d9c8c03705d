package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline/glowmart/internal/domain/catalog"
)

const (
	productColumns = `id, name, slug, description, brand, category, sizes, colors,
		user_id, images, price, total_qty, total_sold, reviews, created_at, updated_at`

	createProductSQL = `INSERT INTO products
		(id, name, slug, description, brand, category, sizes, colors, user_id, images, price, total_qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getProductByIDSQL   = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductByNameSQL = `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	updateProductSQL = `UPDATE products
		SET name = $2, slug = $3, description = $4, brand = $5, category = $6,
			sizes = $7, colors = $8, price = $9, total_qty = $10, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	deleteProductSQL = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product. Returns catalog.ErrProductExists when the
// name is already taken.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.Brand, p.Category,
		p.Sizes, p.Colors, p.UserID, p.Images, p.Price, p.TotalQty,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrProductExists
		}
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return nil
}

// GetByID returns the product with the given id, or catalog.ErrProductNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetByName returns the product with the given exact name, or
// catalog.ErrProductNotFound.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*catalog.Product, error) {
	return r.getOne(ctx, getProductByNameSQL, name)
}

// GetByIDs batch-fetches products by id. Ids with no matching product are
// simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("querying products by ids: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scanning products: %w", err)
	}
	return products, nil
}

// List returns one page of products matching the filter plus the total
// matching count. Text filters match case-insensitive substrings; the
// price filter is an inclusive range.
func (r *ProductRepository) List(ctx context.Context, f catalog.ProductFilter, limit, offset int) ([]catalog.Product, int, error) {
	where, args := buildProductFilter(f)

	var total int
	countSQL := `SELECT count(*) FROM products` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning products: %w", err)
	}
	return products, total, nil
}

// Update rewrites the mutable product fields, or returns
// catalog.ErrProductNotFound.
func (r *ProductRepository) Update(ctx context.Context, id string, upd catalog.ProductUpdate) (*catalog.Product, error) {
	return r.getOne(ctx, updateProductSQL,
		id, upd.Name, slug.Make(upd.Name), upd.Description, upd.Brand, upd.Category,
		upd.Sizes, upd.Colors, upd.Price, upd.TotalQty,
	)
}

// Delete removes the product and returns it, or catalog.ErrProductNotFound.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*catalog.Product, error) {
	return r.getOne(ctx, deleteProductSQL, id)
}

func (r *ProductRepository) getOne(ctx context.Context, sql string, args ...any) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Brand, &p.Category,
		&p.Sizes, &p.Colors, &p.UserID, &p.Images, &p.Price,
		&p.TotalQty, &p.TotalSold, &p.Reviews, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// buildProductFilter assembles the WHERE clause and its arguments for List.
func buildProductFilter(f catalog.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Name != "" {
		add(`name ILIKE '%%' || $%d || '%%'`, f.Name)
	}
	if f.Brand != "" {
		add(`brand ILIKE '%%' || $%d || '%%'`, f.Brand)
	}
	if f.Category != "" {
		add(`category ILIKE '%%' || $%d || '%%'`, f.Category)
	}
	if f.Color != "" {
		add(`EXISTS (SELECT 1 FROM unnest(colors) c WHERE c ILIKE '%%' || $%d || '%%')`, f.Color)
	}
	if f.Size != "" {
		add(`EXISTS (SELECT 1 FROM unnest(sizes) s WHERE s ILIKE '%%' || $%d || '%%')`, f.Size)
	}
	if f.PriceMin != nil {
		add(`price >= $%d`, *f.PriceMin)
	}
	if f.PriceMax != nil {
		add(`price <= $%d`, *f.PriceMax)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
