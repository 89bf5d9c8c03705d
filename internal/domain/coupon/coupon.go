package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCoupon is returned when a supplied coupon code is not found.
	ErrInvalidCoupon = errors.New("coupon not valid")
	// ErrCouponExpired is returned when a coupon's validity window has ended.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrNotFound is returned by lookups outside the checkout path when a
	// coupon does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrCodeTaken is returned when creating a coupon whose code exists.
	ErrCodeTaken = errors.New("coupon code already exists")
	// ErrDiscountRange is returned when a discount is outside 0..100.
	ErrDiscountRange = errors.New("discount must be between 0 and 100")
)

// Coupon is a percentage discount with a validity window. Codes are stored
// uppercase and matched case-insensitively.
type Coupon struct {
	ID        string
	Code      string
	StartDate time.Time
	EndDate   time.Time
	// Discount is a percentage in [0, 100].
	Discount  decimal.Decimal
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the coupon's validity window has ended.
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// DaysLeft returns the whole days remaining until expiry, never negative.
func (c *Coupon) DaysLeft(now time.Time) int {
	d := int(c.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Validate checks field constraints before persistence.
func (c *Coupon) Validate() error {
	if c.Discount.IsNegative() || c.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrDiscountRange
	}
	if c.EndDate.Before(c.StartDate) {
		return errors.New("end date before start date")
	}
	return nil
}

// Update carries the mutable coupon fields for an update operation.
type Update struct {
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Discount  decimal.Decimal
}

// Repository defines persistence operations for coupons.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, limit, offset int) ([]Coupon, int, error)
	Update(ctx context.Context, id string, upd Update) (*Coupon, error)
	Delete(ctx context.Context, id string) (*Coupon, error)
}
