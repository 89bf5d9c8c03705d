// Package checkout implements order placement: coupon validation, order
// persistence with inventory adjustment, and payment session creation.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emberline/glowmart/internal/domain/coupon"
	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
	"github.com/emberline/glowmart/internal/payment"
)

var (
	// ErrMissingShippingAddress is returned when the ordering user has no
	// stored shipping address.
	ErrMissingShippingAddress = errors.New("shipping address required")
	// ErrEmptyOrder is returned when an order carries no line items.
	ErrEmptyOrder = errors.New("no order items")
)

// PlaceOrderRequest is the checkout input. RetailPrice is the pre-discount
// total as submitted by the client; the shipping address is snapshotted
// onto the order as-is.
type PlaceOrderRequest struct {
	UserID          string
	CouponCode      string
	Items           []order.LineItem
	ShippingAddress user.ShippingAddress
	RetailPrice     decimal.Decimal
}

// PlaceOrderResult is the checkout output: the persisted order and the
// processor redirect URL for the client.
type PlaceOrderResult struct {
	Order       *order.Order
	RedirectURL string
}

// Service wires the checkout collaborators together.
type Service struct {
	users    user.Repository
	coupons  coupon.Validator
	orders   order.Repository
	gateway  payment.Gateway
	currency string
	lg       *zap.Logger
}

// NewService creates a checkout Service. currency is the single configured
// currency code used for payment sessions.
func NewService(
	users user.Repository,
	coupons coupon.Validator,
	orders order.Repository,
	gateway payment.Gateway,
	currency string,
	lg *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		coupons:  coupons,
		orders:   orders,
		gateway:  gateway,
		currency: currency,
		lg:       lg,
	}
}

// PlaceOrder runs the checkout flow:
//
//  1. resolve the coupon code to a discount fraction (empty code = none)
//  2. require the user to have a stored shipping address and a non-empty cart
//  3. persist the order; the repository transaction also bumps product sold
//     counters and links the order to the user
//  4. create the external payment session referencing the order id
//
// Session creation happens after the transaction commits: a session failure
// leaves a pending, unpaid order behind. That window is accepted; the
// processor never learns about orders that failed to persist.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	fraction, err := s.coupons.Validate(ctx, req.CouponCode)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if !u.HasShippingAddress {
		return nil, ErrMissingShippingAddress
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	o := &order.Order{
		ID:              uuid.New().String(),
		UserID:          u.ID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		OrderNumber:     order.NewOrderNumber(),
		PaymentStatus:   order.PaymentStatusUnpaid,
		PaymentMethod:   order.PaymentMethodUnspecified,
		RetailPrice:     req.RetailPrice,
		TotalPrice:      coupon.ApplyDiscount(req.RetailPrice, fraction),
		Currency:        order.CurrencyUnspecified,
		Status:          order.StatusPending,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.lg.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", o.UserID),
		zap.String("total", o.TotalPrice.String()),
	)

	items := make([]payment.SessionItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = payment.SessionItem{
			Name:        it.Name,
			Description: it.Description,
			UnitPrice:   it.Price,
			Quantity:    it.Qty,
		}
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		OrderID:  o.ID,
		Currency: s.currency,
		Items:    items,
	})
	if err != nil {
		// The pending order stays behind; only the payment session failed.
		return nil, errors.Wrap(err, "create payment session")
	}

	return &PlaceOrderResult{Order: o, RedirectURL: url}, nil
}

// Settle applies a verified payment settlement to its order. The update is
// an idempotent overwrite: redelivered events produce the same stored
// fields. An unknown order id is reported to the caller as
// order.ErrNotFound so the webhook can still acknowledge receipt.
func (s *Service) Settle(ctx context.Context, st payment.Settlement) (*order.Order, error) {
	o, err := s.orders.UpdatePayment(ctx, st.OrderID, order.PaymentUpdate{
		AmountMinor: st.AmountMinor,
		Currency:    st.Currency,
		Method:      st.Method,
		Status:      st.Status,
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order settled",
		zap.String("order_id", o.ID),
		zap.String("payment_status", o.PaymentStatus),
		zap.String("total", o.TotalPrice.String()),
	)
	return o, nil
}
