package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// TaxonKind selects which product grouping a Taxon belongs to. Categories,
// brands and colors share one schema; only the collection differs.
type TaxonKind string

const (
	KindCategory TaxonKind = "category"
	KindBrand    TaxonKind = "brand"
	KindColor    TaxonKind = "color"
)

var (
	// ErrTaxonNotFound is returned when a requested category/brand/color
	// does not exist.
	ErrTaxonNotFound = errors.New("taxon not found")
	// ErrTaxonExists is returned when creating a taxon whose name is taken.
	ErrTaxonExists = errors.New("taxon already exists")
)

// Taxon is a named product grouping: a category, brand, or color.
// Names are stored lowercase; the slug is derived from the name.
type Taxon struct {
	ID        string
	Name      string
	Slug      string
	Image     string
	UserID    string
	Products  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaxonRepository defines persistence operations shared by categories,
// brands, and colors. The kind picks the backing collection.
type TaxonRepository interface {
	Create(ctx context.Context, kind TaxonKind, t *Taxon) error
	GetByID(ctx context.Context, kind TaxonKind, id string) (*Taxon, error)
	GetByName(ctx context.Context, kind TaxonKind, name string) (*Taxon, error)
	List(ctx context.Context, kind TaxonKind, limit, offset int) ([]Taxon, int, error)
	Update(ctx context.Context, kind TaxonKind, id, name, image string) (*Taxon, error)
	Delete(ctx context.Context, kind TaxonKind, id string) (*Taxon, error)
	AppendProduct(ctx context.Context, kind TaxonKind, taxonID, productID string) error
}
