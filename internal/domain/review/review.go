package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrAlreadyReviewed is returned when a user reviews the same product twice.
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	// ErrRatingRange is returned when a rating is outside 1..5.
	ErrRatingRange = errors.New("rating must be between 1 and 5")
)

// Review is a single user's rating and comment on a product.
type Review struct {
	ID        string
	UserID    string
	ProductID string
	Message   string
	Rating    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks field constraints before persistence.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrRatingRange
	}
	return nil
}

// Repository defines persistence operations for reviews.
//
// Create also appends the review id to the product's review list; the two
// writes are best-effort sequential, matching the rest of the catalog's
// append bookkeeping.
type Repository interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, limit, offset int) ([]Review, int, error)
	HasUserReviewed(ctx context.Context, userID, productID string) (bool, error)
	Update(ctx context.Context, id, userID, message string, rating int) (*Review, error)
	Delete(ctx context.Context, id, userID string) (*Review, error)
}
