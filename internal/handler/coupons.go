package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emberline/glowmart/internal/domain/coupon"
)

type couponRequest struct {
	Code      string          `json:"code"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Discount  decimal.Decimal `json:"discount"`
}

type couponResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Discount  decimal.Decimal `json:"discount"`
	IsExpired bool            `json:"isExpired"`
	DaysLeft  int             `json:"daysLeft"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	now := time.Now()
	return couponResponse{
		ID:        c.ID,
		Code:      c.Code,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Discount:  c.Discount,
		IsExpired: c.IsExpired(now),
		DaysLeft:  c.DaysLeft(now),
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	c := &coupon.Coupon{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(req.Code),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Discount:  req.Discount,
		UserID:    UserIDFromContext(r.Context()),
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.coupons.Create(r.Context(), c); err != nil {
		if errors.Is(err, coupon.ErrCodeTaken) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "coupon created",
		"coupon":  toCouponResponse(c),
	})
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	coupons, total, err := h.coupons.List(r.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]couponResponse, len(coupons))
	for i := range coupons {
		out[i] = toCouponResponse(&coupons[i])
	}
	payload := pageMeta(p, total)
	payload["coupons"] = out
	respondSuccess(w, http.StatusOK, payload)
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{"coupon": toCouponResponse(c)})
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.coupons.Update(r.Context(), chi.URLParam(r, "id"), coupon.Update{
		Code:      strings.ToUpper(req.Code),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Discount:  req.Discount,
	})
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrNotFound):
			respondNotFound(w)
		case errors.Is(err, coupon.ErrCodeTaken):
			respondError(w, http.StatusUnauthorized, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "coupon updated",
		"coupon":  toCouponResponse(c),
	})
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "coupon deleted",
		"coupon":  toCouponResponse(c),
	})
}
