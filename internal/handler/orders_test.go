package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
)

// orderReq builds a request carrying an authenticated user id and a chi
// route id parameter.
func orderReq(method, target, body, userID, orderID string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}

	ctx := r.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey{}, userID)
	}
	if orderID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", orderID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func TestOrderStats(t *testing.T) {
	orders := &mockOrderRepo{stats: &order.Stats{
		Count:    3,
		Max:      decimal.NewFromInt(30),
		Avg:      decimal.NewFromInt(20),
		Min:      decimal.NewFromInt(10),
		Sum:      decimal.NewFromInt(60),
		TodaySum: decimal.NewFromInt(30),
	}}
	h := newTestHandler(nil, orders, nil)

	w := httptest.NewRecorder()
	h.orderStats(w, orderReq(http.MethodGet, "/orders/sales/stats", "", "admin", ""))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Stats  struct {
			Count      int     `json:"count"`
			MaxSale    float64 `json:"maxSale"`
			AvgSale    float64 `json:"avgSale"`
			MinSale    float64 `json:"minSale"`
			TotalSales float64 `json:"totalSales"`
			SalesToday float64 `json:"salesToday"`
		} `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Stats.Count)
	assert.Equal(t, 30.0, body.Stats.MaxSale)
	assert.Equal(t, 20.0, body.Stats.AvgSale)
	assert.Equal(t, 10.0, body.Stats.MinSale)
	assert.Equal(t, 60.0, body.Stats.TotalSales)
	assert.Equal(t, 30.0, body.Stats.SalesToday)
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := &mockOrderRepo{byID: map[string]*order.Order{
		"o1": {ID: "o1", UserID: "u1", Status: order.StatusPending},
	}}
	h := newTestHandler(nil, orders, nil)

	t.Run("invalid status leaves order unchanged", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.updateOrderStatus(w, orderReq(http.MethodPut, "/orders/o1", `{"status":"Teleported"}`, "admin", "o1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, order.StatusPending, orders.byID["o1"].Status)
	})

	t.Run("valid transition", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.updateOrderStatus(w, orderReq(http.MethodPut, "/orders/o1", `{"status":"Shipped"}`, "admin", "o1"))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.StatusShipped, orders.byID["o1"].Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.updateOrderStatus(w, orderReq(http.MethodPut, "/orders/ghost", `{"status":"Shipped"}`, "admin", "ghost"))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestGetOrder_Ownership(t *testing.T) {
	users := &mockUserRepo{byID: map[string]*user.User{
		"u2":    {ID: "u2"},
		"admin": {ID: "admin", IsAdmin: true},
	}}
	orders := &mockOrderRepo{byID: map[string]*order.Order{
		"o1": {ID: "o1", UserID: "u1", Status: order.StatusPending},
	}}
	h := newTestHandler(users, orders, nil)

	t.Run("owner", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.getOrder(w, orderReq(http.MethodGet, "/orders/o1", "", "u1", "o1"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other customer", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.getOrder(w, orderReq(http.MethodGet, "/orders/o1", "", "u2", "o1"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.getOrder(w, orderReq(http.MethodGet, "/orders/o1", "", "admin", "o1"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
