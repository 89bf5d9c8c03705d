package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists is returned when creating a product whose name is taken.
	ErrProductExists = errors.New("product already exists")
)

// Product is a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Brand       string
	Category    string
	Sizes       []string
	Colors      []string
	UserID      string
	Images      []string
	Price       decimal.Decimal
	TotalQty    int
	TotalSold   int
	Reviews     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QtyLeft reports how many units remain sellable.
func (p *Product) QtyLeft() int {
	return p.TotalQty - p.TotalSold
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
// String fields match as case-insensitive substrings.
type ProductFilter struct {
	Name     string
	Brand    string
	Category string
	Color    string
	Size     string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// ProductUpdate carries the mutable product fields for an update operation.
type ProductUpdate struct {
	Name        string
	Description string
	Brand       string
	Category    string
	Sizes       []string
	Colors      []string
	Price       decimal.Decimal
	TotalQty    int
}

// ProductRepository defines persistence operations for the product catalog.
//
// List returns one page of products plus the total matching count.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, f ProductFilter, limit, offset int) ([]Product, int, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}
