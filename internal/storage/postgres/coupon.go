package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline/glowmart/internal/domain/coupon"
)

const (
	couponColumns = `id, code, start_date, end_date, discount, user_id, created_at, updated_at`

	createCouponSQL = `INSERT INTO coupons (id, code, start_date, end_date, discount, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	findCouponByCodeSQL = `SELECT ` + couponColumns + ` FROM coupons
		WHERE UPPER(code) = UPPER($1)`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	updateCouponSQL = `UPDATE coupons
		SET code = $2, start_date = $3, end_date = $4, discount = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + couponColumns

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1 RETURNING ` + couponColumns
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Create persists a coupon. Codes are stored uppercase.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, createCouponSQL,
		c.ID, strings.ToUpper(c.Code), c.StartDate, c.EndDate, c.Discount, c.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrCodeTaken
		}
		return fmt.Errorf("creating coupon: %w", err)
	}
	return nil
}

// FindByCode returns the coupon with the given code, matched
// case-insensitively, or coupon.ErrInvalidCoupon when no such code exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, err := r.getOne(ctx, findCouponByCodeSQL, code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, err
	}
	return c, nil
}

// List returns one page of coupons plus the total count.
func (r *CouponRepository) List(ctx context.Context, limit, offset int) ([]coupon.Coupon, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting coupons: %w", err)
	}

	rows, err := r.pool.Query(ctx, listCouponsSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing coupons: %w", err)
	}

	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning coupons: %w", err)
	}
	return coupons, total, nil
}

// Update rewrites the coupon's code, window and discount, or returns
// coupon.ErrNotFound.
func (r *CouponRepository) Update(ctx context.Context, id string, upd coupon.Update) (*coupon.Coupon, error) {
	c, err := r.getOne(ctx, updateCouponSQL,
		id, strings.ToUpper(upd.Code), upd.StartDate, upd.EndDate, upd.Discount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, coupon.ErrCodeTaken
		}
		return nil, err
	}
	return c, nil
}

// Delete removes the coupon and returns it, or coupon.ErrNotFound.
func (r *CouponRepository) Delete(ctx context.Context, id string) (*coupon.Coupon, error) {
	return r.getOne(ctx, deleteCouponSQL, id)
}

func (r *CouponRepository) getOne(ctx context.Context, sql string, args ...any) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying coupon: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("scanning coupon: %w", err)
	}
	return &c, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.StartDate, &c.EndDate, &c.Discount, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
