package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validator resolves a coupon code to a discount fraction in [0, 1].
type Validator interface {
	// Validate returns the discount fraction for the given code.
	//
	// An empty code means "no coupon": the fraction is zero and no error is
	// returned. A non-empty code must resolve to a known, unexpired coupon,
	// otherwise ErrInvalidCoupon or ErrCouponExpired is returned.
	Validate(ctx context.Context, code string) (decimal.Decimal, error)
}

// RepoValidator implements Validator by looking coupons up in a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate implements Validator.
func (v *RepoValidator) Validate(ctx context.Context, code string) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}

	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) || errors.Is(err, ErrNotFound) {
			return decimal.Zero, ErrInvalidCoupon
		}
		return decimal.Zero, errors.Wrap(err, "lookup coupon")
	}

	if c.IsExpired(v.now()) {
		return decimal.Zero, ErrCouponExpired
	}

	return c.Discount.Div(hundred), nil
}

// ApplyDiscount returns retail * (1 - fraction), rounded to two decimal
// places and floored at zero.
func ApplyDiscount(retail, fraction decimal.Decimal) decimal.Decimal {
	total := retail.Sub(retail.Mul(fraction))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}
