package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline/glowmart/internal/domain/catalog"
)

// taxonTables maps a taxon kind to its backing table. Only values from this
// map are ever spliced into SQL.
var taxonTables = map[catalog.TaxonKind]string{
	catalog.KindCategory: "categories",
	catalog.KindBrand:    "brands",
	catalog.KindColor:    "colors",
}

const taxonColumns = `id, name, slug, image, user_id, products, created_at, updated_at`

var _ catalog.TaxonRepository = (*TaxonRepository)(nil)

// TaxonRepository implements catalog.TaxonRepository for all three taxon
// kinds, selecting the table per call.
type TaxonRepository struct {
	pool *pgxpool.Pool
}

// NewTaxonRepository returns a TaxonRepository that uses the given pool.
func NewTaxonRepository(pool *pgxpool.Pool) *TaxonRepository {
	return &TaxonRepository{pool: pool}
}

func table(kind catalog.TaxonKind) (string, error) {
	t, ok := taxonTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown taxon kind %q", kind)
	}
	return t, nil
}

// Create persists a new taxon. Returns catalog.ErrTaxonExists when the
// name is already taken in that kind's table.
func (r *TaxonRepository) Create(ctx context.Context, kind catalog.TaxonKind, t *catalog.Taxon) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`INSERT INTO %s (id, name, slug, image, user_id) VALUES ($1, $2, $3, $4, $5)`, tbl)
	_, err = r.pool.Exec(ctx, sql, t.ID, t.Name, t.Slug, t.Image, t.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrTaxonExists
		}
		return fmt.Errorf("creating %s %q: %w", kind, t.Name, err)
	}
	return nil
}

// GetByID returns the taxon with the given id, or catalog.ErrTaxonNotFound.
func (r *TaxonRepository) GetByID(ctx context.Context, kind catalog.TaxonKind, id string) (*catalog.Taxon, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, taxonColumns, tbl), id)
}

// GetByName returns the taxon with the given name, or catalog.ErrTaxonNotFound.
func (r *TaxonRepository) GetByName(ctx context.Context, kind catalog.TaxonKind, name string) (*catalog.Taxon, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, taxonColumns, tbl), name)
}

// List returns one page of taxa plus the total count.
func (r *TaxonRepository) List(ctx context.Context, kind catalog.TaxonKind, limit, offset int) ([]catalog.Taxon, int, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM `+tbl).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tbl, err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name LIMIT $1 OFFSET $2`, taxonColumns, tbl)
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", tbl, err)
	}

	taxa, err := pgx.CollectRows(rows, scanTaxon)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", tbl, err)
	}
	return taxa, total, nil
}

// Update rewrites name, slug, and image, or returns catalog.ErrTaxonNotFound.
func (r *TaxonRepository) Update(ctx context.Context, kind catalog.TaxonKind, id, name, image string) (*catalog.Taxon, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`UPDATE %s SET name = $2, slug = $3, image = $4, updated_at = now()
		WHERE id = $1 RETURNING %s`, tbl, taxonColumns)
	return r.getOne(ctx, sql, id, name, slug.Make(name), image)
}

// Delete removes the taxon and returns it, or catalog.ErrTaxonNotFound.
func (r *TaxonRepository) Delete(ctx context.Context, kind catalog.TaxonKind, id string) (*catalog.Taxon, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, tbl, taxonColumns), id)
}

// AppendProduct adds a product id to the taxon's product list.
func (r *TaxonRepository) AppendProduct(ctx context.Context, kind catalog.TaxonKind, taxonID, productID string) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`UPDATE %s SET products = array_append(products, $2), updated_at = now() WHERE id = $1`, tbl)
	tag, err := r.pool.Exec(ctx, sql, taxonID, productID)
	if err != nil {
		return fmt.Errorf("appending product to %s %q: %w", kind, taxonID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrTaxonNotFound
	}
	return nil
}

func (r *TaxonRepository) getOne(ctx context.Context, sql string, args ...any) (*catalog.Taxon, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying taxon: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTaxon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrTaxonNotFound
		}
		return nil, fmt.Errorf("scanning taxon: %w", err)
	}
	return &t, nil
}

func scanTaxon(row pgx.CollectableRow) (catalog.Taxon, error) {
	var t catalog.Taxon
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Image, &t.UserID, &t.Products, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
