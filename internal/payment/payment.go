// Package payment defines the ports between the checkout flow and the
// external payment processor.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidSignature is returned when a webhook payload fails signature
// verification against the shared signing secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SessionItem is one line item forwarded to the processor's checkout page.
type SessionItem struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// SessionRequest asks the processor for a hosted checkout session. The
// order id travels in the session metadata so the completion webhook can be
// correlated back to the order.
type SessionRequest struct {
	OrderID  string
	Currency string
	Items    []SessionItem
}

// Gateway creates hosted checkout sessions with the external processor.
type Gateway interface {
	// CreateCheckoutSession returns the URL the client is redirected to.
	// Any processor failure propagates as an error.
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (redirectURL string, err error)
}

// Settlement is the payment outcome extracted from a verified
// "checkout completed" webhook event.
type Settlement struct {
	OrderID     string
	Status      string
	Method      string
	AmountMinor int64
	Currency    string
}

// SettlementParser verifies an inbound webhook payload and extracts a
// Settlement from it.
type SettlementParser interface {
	// Parse returns ErrInvalidSignature (possibly wrapped) when the payload
	// cannot be authenticated. Verified events of types other than
	// "checkout completed" yield (nil, nil): accepted and ignored.
	Parse(payload []byte, sigHeader string) (*Settlement, error)
}

// MinorUnits converts a major-unit price to the processor's minor-unit
// integer convention, rounding to the nearest integer (49.99 -> 4999).
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
