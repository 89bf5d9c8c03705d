package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline/glowmart/internal/domain/review"
)

const (
	reviewColumns = `id, user_id, product_id, message, rating, created_at, updated_at`

	createReviewSQL = `INSERT INTO reviews (id, user_id, product_id, message, rating)
		VALUES ($1, $2, $3, $4, $5)`

	appendReviewToProductSQL = `UPDATE products
		SET reviews = array_append(reviews, $2), updated_at = now()
		WHERE id = $1`

	getReviewByIDSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	hasUserReviewedSQL = `SELECT EXISTS (
		SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	updateReviewSQL = `UPDATE reviews SET message = $3, rating = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + reviewColumns

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1 AND user_id = $2
		RETURNING ` + reviewColumns
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create persists a review and appends its id to the product's review
// list. The unique (user, product) constraint doubles as the
// one-review-per-user guard.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	_, err := r.pool.Exec(ctx, createReviewSQL,
		rv.ID, rv.UserID, rv.ProductID, rv.Message, rv.Rating,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return review.ErrAlreadyReviewed
		}
		return fmt.Errorf("creating review: %w", err)
	}

	if _, err := r.pool.Exec(ctx, appendReviewToProductSQL, rv.ProductID, rv.ID); err != nil {
		return fmt.Errorf("appending review to product %q: %w", rv.ProductID, err)
	}
	return nil
}

// GetByID returns the review with the given id, or review.ErrNotFound.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	return r.getOne(ctx, getReviewByIDSQL, id)
}

// List returns one page of reviews plus the total count.
func (r *ReviewRepository) List(ctx context.Context, limit, offset int) ([]review.Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reviews: %w", err)
	}

	rows, err := r.pool.Query(ctx, listReviewsSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning reviews: %w", err)
	}
	return reviews, total, nil
}

// HasUserReviewed reports whether the user already reviewed the product.
func (r *ReviewRepository) HasUserReviewed(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, hasUserReviewedSQL, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking existing review: %w", err)
	}
	return exists, nil
}

// Update rewrites the message and rating of the user's own review, or
// returns review.ErrNotFound.
func (r *ReviewRepository) Update(ctx context.Context, id, userID, message string, rating int) (*review.Review, error) {
	return r.getOne(ctx, updateReviewSQL, id, userID, message, rating)
}

// Delete removes the user's own review and returns it, or review.ErrNotFound.
func (r *ReviewRepository) Delete(ctx context.Context, id, userID string) (*review.Review, error) {
	return r.getOne(ctx, deleteReviewSQL, id, userID)
}

func (r *ReviewRepository) getOne(ctx context.Context, sql string, args ...any) (*review.Review, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying review: %w", err)
	}

	rv, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, fmt.Errorf("scanning review: %w", err)
	}
	return &rv, nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Message, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}
