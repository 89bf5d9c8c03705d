package order

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emberline/glowmart/internal/domain/user"
)

// Defaults for payment fields until a webhook settles the order.
const (
	PaymentStatusUnpaid      = "Not Paid"
	PaymentMethodUnspecified = "Not Specified"
	CurrencyUnspecified      = "Not Specified"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidStatus is returned when a status update carries a value
	// outside the fulfillment enum.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

// ParseStatus validates a raw status string against the fulfillment enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// LineItem is one product entry within an order, snapshotted at checkout.
type LineItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Qty         int             `json:"qty"`
}

// Order is a single checkout attempt. Line items and the shipping address
// are immutable snapshots; only status, payment fields, and timestamps
// mutate after creation.
type Order struct {
	ID              string
	UserID          string
	Items           []LineItem
	ShippingAddress user.ShippingAddress
	OrderNumber     string
	PaymentStatus   string
	PaymentMethod   string
	RetailPrice     decimal.Decimal
	TotalPrice      decimal.Decimal
	Currency        string
	Status          Status
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	orderNumberLen      = 30
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewOrderNumber returns a random 30-character base-36 order number.
// Uniqueness is not guaranteed by construction; the order id is the key.
func NewOrderNumber() string {
	b := make([]byte, orderNumberLen)
	for i := range b {
		b[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	return string(b)
}

// PaymentUpdate carries the settlement fields reported by the payment
// processor's webhook. Amounts arrive in minor units (cents).
type PaymentUpdate struct {
	AmountMinor int64
	Currency    string
	Method      string
	Status      string
}

// AmountMajor converts the minor-unit amount to major units (4999 -> 49.99).
func (p PaymentUpdate) AmountMajor() decimal.Decimal {
	return decimal.NewFromInt(p.AmountMinor).Div(decimal.NewFromInt(100))
}

// Stats aggregates total price across all orders, plus today's sales sum
// measured from local midnight.
type Stats struct {
	Count    int
	Max      decimal.Decimal
	Avg      decimal.Decimal
	Min      decimal.Decimal
	Sum      decimal.Decimal
	TodaySum decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order, increments each referenced product's sold
	// counter by the ordered quantity, and appends the order id to the
	// owning user's order list, all in one transaction. A line item whose
	// product cannot be located is skipped without error.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id string, s Status) (*Order, error)

	// UpdatePayment overwrites the payment fields and total price. It is a
	// pure overwrite keyed by order id, so redelivered webhook events
	// converge to the same state.
	UpdatePayment(ctx context.Context, id string, p PaymentUpdate) (*Order, error)

	Delete(ctx context.Context, id string) (*Order, error)
	Stats(ctx context.Context, todayStart time.Time) (*Stats, error)
}
