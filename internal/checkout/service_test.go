package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
	"github.com/emberline/glowmart/internal/payment"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) Create(context.Context, *user.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) UpdateShippingAddress(context.Context, string, user.ShippingAddress) (*user.User, error) {
	return nil, user.ErrNotFound
}

type mockValidator struct {
	fraction decimal.Decimal
	err      error
}

func (m *mockValidator) Validate(context.Context, string) (decimal.Decimal, error) {
	return m.fraction, m.err
}

type mockOrderRepo struct {
	lastCreated *order.Order
	createErr   error

	lastPaymentID  string
	lastPayment    order.PaymentUpdate
	updated        *order.Order
	updatePayErr   error
	paymentUpdates int
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCreated = o
	return nil
}

func (m *mockOrderRepo) GetByID(context.Context, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) List(context.Context, int, int) ([]order.Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) UpdateStatus(context.Context, string, order.Status) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) UpdatePayment(_ context.Context, id string, p order.PaymentUpdate) (*order.Order, error) {
	if m.updatePayErr != nil {
		return nil, m.updatePayErr
	}
	m.lastPaymentID = id
	m.lastPayment = p
	m.paymentUpdates++
	return m.updated, nil
}

func (m *mockOrderRepo) Delete(context.Context, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) Stats(context.Context, time.Time) (*order.Stats, error) {
	return nil, nil
}

type mockGateway struct {
	lastReq payment.SessionRequest
	url     string
	err     error
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (string, error) {
	m.lastReq = req
	return m.url, m.err
}

// --- Helpers ---

func testUser() *user.User {
	return &user.User{
		ID:                 "u1",
		Fullname:           "Jamie Doe",
		Email:              "jamie@example.com",
		HasShippingAddress: true,
		ShippingAddress:    &user.ShippingAddress{City: "Oslo", Country: "NO"},
	}
}

func testRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		UserID: "u1",
		Items: []order.LineItem{
			{ProductID: "p1", Name: "Air Zoom Twist", Price: decimal.NewFromInt(100), Qty: 1},
		},
		ShippingAddress: user.ShippingAddress{City: "Oslo", Country: "NO"},
		RetailPrice:     decimal.NewFromInt(100),
	}
}

func newTestService(users *mockUserRepo, v *mockValidator, orders *mockOrderRepo, gw *mockGateway) *Service {
	return NewService(users, v, orders, gw, "usd", zap.NewNop())
}

// --- Tests ---

func TestPlaceOrder_NoCoupon(t *testing.T) {
	orders := &mockOrderRepo{}
	gw := &mockGateway{url: "https://pay.example/session"}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{fraction: decimal.Zero}, orders, gw,
	)

	result, err := svc.PlaceOrder(context.Background(), testRequest())
	require.NoError(t, err)

	o := result.Order
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(100)), "got total %s", o.TotalPrice)
	assert.Equal(t, order.PaymentStatusUnpaid, o.PaymentStatus)
	assert.Equal(t, order.PaymentMethodUnspecified, o.PaymentMethod)
	assert.Equal(t, order.CurrencyUnspecified, o.Currency)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Len(t, o.OrderNumber, 30)
	assert.Equal(t, "https://pay.example/session", result.RedirectURL)
	assert.Same(t, o, orders.lastCreated)
}

func TestPlaceOrder_CouponDiscountsTotal(t *testing.T) {
	orders := &mockOrderRepo{}
	gw := &mockGateway{url: "https://pay.example/session"}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{fraction: decimal.RequireFromString("0.1")}, orders, gw,
	)

	req := testRequest()
	req.CouponCode = "SAVE10"

	result, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "90", result.Order.TotalPrice.String())
	assert.Equal(t, "100", result.Order.RetailPrice.String())
}

func TestPlaceOrder_CouponErrorStopsCheckout(t *testing.T) {
	couponErr := errors.New("coupon not valid")
	orders := &mockOrderRepo{}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{err: couponErr}, orders, &mockGateway{},
	)

	_, err := svc.PlaceOrder(context.Background(), testRequest())
	require.ErrorIs(t, err, couponErr)
	assert.Nil(t, orders.lastCreated, "no order may be written")
}

func TestPlaceOrder_MissingShippingAddress(t *testing.T) {
	u := testUser()
	u.HasShippingAddress = false
	orders := &mockOrderRepo{}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": u}},
		&mockValidator{}, orders, &mockGateway{},
	)

	_, err := svc.PlaceOrder(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrMissingShippingAddress)
	assert.Nil(t, orders.lastCreated)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{}, orders, &mockGateway{},
	)

	req := testRequest()
	req.Items = nil

	_, err := svc.PlaceOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrEmptyOrder)
	assert.Nil(t, orders.lastCreated, "rejected before any write")
}

func TestPlaceOrder_GatewayFailureLeavesPendingOrder(t *testing.T) {
	gwErr := errors.New("processor unavailable")
	orders := &mockOrderRepo{}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{}, orders, &mockGateway{err: gwErr},
	)

	_, err := svc.PlaceOrder(context.Background(), testRequest())
	require.ErrorIs(t, err, gwErr)
	require.NotNil(t, orders.lastCreated, "order persists before the session attempt")
	assert.Equal(t, order.PaymentStatusUnpaid, orders.lastCreated.PaymentStatus)
}

func TestPlaceOrder_SessionCarriesOrderMetadata(t *testing.T) {
	orders := &mockOrderRepo{}
	gw := &mockGateway{url: "https://pay.example/session"}
	svc := newTestService(
		&mockUserRepo{byID: map[string]*user.User{"u1": testUser()}},
		&mockValidator{}, orders, gw,
	)

	result, err := svc.PlaceOrder(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, result.Order.ID, gw.lastReq.OrderID)
	assert.Equal(t, "usd", gw.lastReq.Currency)
	require.Len(t, gw.lastReq.Items, 1)
	assert.Equal(t, "Air Zoom Twist", gw.lastReq.Items[0].Name)
	assert.Equal(t, 1, gw.lastReq.Items[0].Quantity)
}

func TestSettle(t *testing.T) {
	settled := &order.Order{ID: "o1", PaymentStatus: "paid", TotalPrice: decimal.RequireFromString("49.99")}
	orders := &mockOrderRepo{updated: settled}
	svc := newTestService(&mockUserRepo{}, &mockValidator{}, orders, &mockGateway{})

	got, err := svc.Settle(context.Background(), payment.Settlement{
		OrderID:     "o1",
		Status:      "paid",
		Method:      "card",
		AmountMinor: 4999,
		Currency:    "usd",
	})
	require.NoError(t, err)

	assert.Same(t, settled, got)
	assert.Equal(t, "o1", orders.lastPaymentID)
	assert.Equal(t, int64(4999), orders.lastPayment.AmountMinor)
	assert.Equal(t, "card", orders.lastPayment.Method)
	assert.Equal(t, "usd", orders.lastPayment.Currency)
}

func TestSettle_UnknownOrder(t *testing.T) {
	orders := &mockOrderRepo{updatePayErr: order.ErrNotFound}
	svc := newTestService(&mockUserRepo{}, &mockValidator{}, orders, &mockGateway{})

	_, err := svc.Settle(context.Background(), payment.Settlement{OrderID: "missing"})
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestSettle_Idempotent(t *testing.T) {
	settled := &order.Order{ID: "o1", PaymentStatus: "paid"}
	orders := &mockOrderRepo{updated: settled}
	svc := newTestService(&mockUserRepo{}, &mockValidator{}, orders, &mockGateway{})

	st := payment.Settlement{OrderID: "o1", Status: "paid", AmountMinor: 4999, Currency: "usd"}

	_, err := svc.Settle(context.Background(), st)
	require.NoError(t, err)
	_, err = svc.Settle(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, 2, orders.paymentUpdates)
	assert.Equal(t, orders.lastPayment, order.PaymentUpdate{
		AmountMinor: 4999, Currency: "usd", Method: "", Status: "paid",
	})
}
