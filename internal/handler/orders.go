package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emberline/glowmart/internal/checkout"
	"github.com/emberline/glowmart/internal/domain/coupon"
	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
)

type placeOrderRequest struct {
	Items           []order.LineItem     `json:"items"`
	ShippingAddress user.ShippingAddress `json:"shippingAddress"`
	RetailPrice     decimal.Decimal      `json:"retailPrice"`
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId"`
	Items           []order.LineItem     `json:"items"`
	ShippingAddress user.ShippingAddress `json:"shippingAddress"`
	OrderNumber     string               `json:"orderNumber"`
	PaymentStatus   string               `json:"paymentStatus"`
	PaymentMethod   string               `json:"paymentMethod"`
	RetailPrice     decimal.Decimal      `json:"retailPrice"`
	TotalPrice      decimal.Decimal      `json:"totalPrice"`
	Currency        string               `json:"currency"`
	Status          order.Status         `json:"status"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		OrderNumber:     o.OrderNumber,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		RetailPrice:     o.RetailPrice,
		TotalPrice:      o.TotalPrice,
		Currency:        o.Currency,
		Status:          o.Status,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceOrderRequest{
		UserID:          UserIDFromContext(r.Context()),
		CouponCode:      r.URL.Query().Get("coupon"),
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		RetailPrice:     req.RetailPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrInvalidCoupon),
			errors.Is(err, coupon.ErrCouponExpired),
			errors.Is(err, checkout.ErrMissingShippingAddress):
			respondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, checkout.ErrEmptyOrder):
			respondError(w, http.StatusBadRequest, checkout.ErrEmptyOrder.Error())
		case errors.Is(err, user.ErrNotFound):
			respondError(w, http.StatusUnauthorized, "authentication required")
		default:
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "order placed",
		"order":   toOrderResponse(result.Order),
		"url":     result.RedirectURL,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Owners see their own orders; anyone else needs admin.
	uid := UserIDFromContext(r.Context())
	if o.UserID != uid {
		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil || !u.IsAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
	}

	respondSuccess(w, http.StatusOK, envelope{"order": toOrderResponse(o)})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	orders, total, err := h.orders.List(r.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	payload := pageMeta(p, total)
	payload["orders"] = out
	respondSuccess(w, http.StatusOK, payload)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "order updated",
		"order":   toOrderResponse(o),
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "order deleted",
		"order":   toOrderResponse(o),
	})
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := h.orders.Stats(r.Context(), todayStart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"stats": envelope{
			"count":      stats.Count,
			"maxSale":    stats.Max,
			"avgSale":    stats.Avg,
			"minSale":    stats.Min,
			"totalSales": stats.Sum,
			"salesToday": stats.TodaySum,
		},
	})
}
