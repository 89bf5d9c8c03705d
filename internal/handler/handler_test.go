package handler

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberline/glowmart/internal/auth"
	"github.com/emberline/glowmart/internal/checkout"
	"github.com/emberline/glowmart/internal/domain/coupon"
	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
	"github.com/emberline/glowmart/internal/payment"
)

func TestMain(m *testing.M) {
	// Match the server process: prices serialize as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

// --- Mock implementations shared by the package tests ---

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

type mockOrderRepo struct {
	byID           map[string]*order.Order
	stats          *order.Stats
	lastPayment    order.PaymentUpdate
	paymentUpdates int
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.byID == nil {
		m.byID = make(map[string]*order.Order)
	}
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(context.Context, int, int) ([]order.Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, s order.Status) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = s
	return o, nil
}

func (m *mockOrderRepo) UpdatePayment(_ context.Context, id string, p order.PaymentUpdate) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	m.lastPayment = p
	m.paymentUpdates++
	o.PaymentStatus = p.Status
	o.PaymentMethod = p.Method
	o.Currency = p.Currency
	o.TotalPrice = p.AmountMajor()
	return o, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	delete(m.byID, id)
	return o, nil
}

func (m *mockOrderRepo) Stats(context.Context, time.Time) (*order.Stats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &order.Stats{}, nil
}

type mockValidator struct {
	fraction decimal.Decimal
	err      error
}

var _ coupon.Validator = (*mockValidator)(nil)

func (m *mockValidator) Validate(context.Context, string) (decimal.Decimal, error) {
	return m.fraction, m.err
}

type mockGateway struct {
	url string
	err error
}

func (m *mockGateway) CreateCheckoutSession(context.Context, payment.SessionRequest) (string, error) {
	return m.url, m.err
}

// stubParser is a canned SettlementParser for webhook tests.
type stubParser struct {
	settlement *payment.Settlement
	err        error
}

func (s *stubParser) Parse([]byte, string) (*payment.Settlement, error) {
	return s.settlement, s.err
}

// newTestHandler wires a Handler around mocks; unused dependencies stay nil.
func newTestHandler(users *mockUserRepo, orders *mockOrderRepo, parser payment.SettlementParser) *Handler {
	if users == nil {
		users = &mockUserRepo{}
	}
	if orders == nil {
		orders = &mockOrderRepo{}
	}
	svc := checkout.NewService(users, &mockValidator{}, orders, &mockGateway{url: "https://pay.example"}, "usd", zap.NewNop())
	return NewHandler(users, nil, nil, nil, nil, orders, svc, auth.NewTokenIssuer([]byte("test-secret")), parser)
}

// --- Helper tests ---

func TestParsePage(t *testing.T) {
	tests := []struct {
		query     string
		wantNum   int
		wantLimit int
	}{
		{query: "", wantNum: 1, wantLimit: 10},
		{query: "page=3&limit=25", wantNum: 3, wantLimit: 25},
		{query: "page=0&limit=-5", wantNum: 1, wantLimit: 10},
		{query: "page=abc&limit=xyz", wantNum: 1, wantLimit: 10},
		{query: "limit=500", wantNum: 1, wantLimit: 10},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/?"+tt.query, nil)
		p := parsePage(r)
		assert.Equal(t, tt.wantNum, p.Num, "query %q", tt.query)
		assert.Equal(t, tt.wantLimit, p.Limit, "query %q", tt.query)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, page{Num: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, page{Num: 3, Limit: 10}.Offset())
}

func TestPageMeta(t *testing.T) {
	meta := pageMeta(page{Num: 2, Limit: 10}, 35)

	assert.Equal(t, 2, meta["page"])
	assert.Equal(t, 4, meta["pages"])
	assert.Equal(t, 35, meta["total"])
	assert.Equal(t, 3, meta["nextPage"])
	assert.Equal(t, 1, meta["prevPage"])

	first := pageMeta(page{Num: 1, Limit: 10}, 5)
	_, hasNext := first["nextPage"]
	_, hasPrev := first["prevPage"]
	assert.False(t, hasNext)
	assert.False(t, hasPrev)
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, 401, "coupon not valid")

	require.Equal(t, 401, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"error","message":"coupon not valid"}`, w.Body.String())
}

func TestRespondNotFound_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	respondNotFound(w)

	require.Equal(t, 204, w.Code)
	assert.Empty(t, w.Body.String())
}
