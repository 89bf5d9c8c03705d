package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("user already registered")
)

// ShippingAddress is the structured delivery address stored on a user and
// snapshotted onto orders at checkout time.
type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// User is a registered customer or administrator.
type User struct {
	ID                 string
	Fullname           string
	Email              string
	PasswordHash       string
	Orders             []string
	WishList           []string
	IsAdmin            bool
	HasShippingAddress bool
	ShippingAddress    *ShippingAddress
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Repository defines persistence operations for users.
//
// Appending an order to a user's order list happens inside the checkout
// transaction and is owned by order.Repository, not here.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateShippingAddress(ctx context.Context, id string, addr ShippingAddress) (*User, error)
}
