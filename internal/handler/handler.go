// Package handler exposes the HTTP API: request decoding, auth, response
// envelopes, and routing. Business logic lives in the domain packages.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/emberline/glowmart/internal/auth"
	"github.com/emberline/glowmart/internal/checkout"
	"github.com/emberline/glowmart/internal/domain/catalog"
	"github.com/emberline/glowmart/internal/domain/coupon"
	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/review"
	"github.com/emberline/glowmart/internal/domain/user"
	"github.com/emberline/glowmart/internal/payment"
)

// Handler holds the API dependencies and implements every route.
type Handler struct {
	users    user.Repository
	products catalog.ProductRepository
	taxa     catalog.TaxonRepository
	reviews  review.Repository
	coupons  coupon.Repository
	orders   order.Repository
	checkout *checkout.Service
	tokens   *auth.TokenIssuer
	webhook  payment.SettlementParser
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	users user.Repository,
	products catalog.ProductRepository,
	taxa catalog.TaxonRepository,
	reviews review.Repository,
	coupons coupon.Repository,
	orders order.Repository,
	checkoutSvc *checkout.Service,
	tokens *auth.TokenIssuer,
	webhook payment.SettlementParser,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		taxa:     taxa,
		reviews:  reviews,
		coupons:  coupons,
		orders:   orders,
		checkout: checkoutSvc,
		tokens:   tokens,
		webhook:  webhook,
	}
}

// Routes builds the /api/v1 router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.registerUser)
		r.Post("/login", h.loginUser)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/profile", h.userProfile)
			r.Put("/update/shipping", h.updateShippingAddress)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireAdmin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	h.taxonRoutes(r, "/categories", catalog.KindCategory)
	h.taxonRoutes(r, "/brands", catalog.KindBrand)
	h.taxonRoutes(r, "/colors", catalog.KindColor)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.listReviews)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Post("/{productID}", h.createReview)
			r.Put("/{id}", h.updateReview)
			r.Delete("/{id}", h.deleteReview)
		})
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", h.listCoupons)
		r.Get("/{code}", h.getCoupon)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireAdmin)
			r.Post("/", h.createCoupon)
			r.Put("/{id}", h.updateCoupon)
			r.Delete("/{id}", h.deleteCoupon)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Post("/", h.placeOrder)
		r.Get("/{id}", h.getOrder)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/", h.listOrders)
			r.Put("/{id}", h.updateOrderStatus)
			r.Delete("/{id}", h.deleteOrder)
			r.Get("/sales/stats", h.orderStats)
		})
	})

	r.Post("/webhook", h.handleWebhook)

	return r
}

func (h *Handler) taxonRoutes(r chi.Router, prefix string, kind catalog.TaxonKind) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.listTaxa(kind))
		r.Get("/{id}", h.getTaxon(kind))
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireAdmin)
			r.Post("/", h.createTaxon(kind))
			r.Put("/{id}", h.updateTaxon(kind))
			r.Delete("/{id}", h.deleteTaxon(kind))
		})
	})
}

// envelope is the common response shape. Payload fields merge in alongside
// status and message.
type envelope map[string]any

func respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if code == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondSuccess(w http.ResponseWriter, code int, payload envelope) {
	body := envelope{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	respond(w, code, body)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respond(w, code, envelope{"status": "error", "message": message})
}

// respondNotFound acknowledges a lookup miss without an error status.
func respondNotFound(w http.ResponseWriter) {
	respond(w, http.StatusNoContent, nil)
}

// page holds parsed pagination query parameters.
type page struct {
	Num   int
	Limit int
}

func (p page) Offset() int { return (p.Num - 1) * p.Limit }

// parsePage reads ?page= and ?limit= with defaults 1 and 10.
func parsePage(r *http.Request) page {
	p := page{Num: 1, Limit: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Num = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		p.Limit = v
	}
	return p
}

// pageMeta builds the pagination block for list responses.
func pageMeta(p page, total int) envelope {
	pages := (total + p.Limit - 1) / p.Limit
	meta := envelope{
		"page":  p.Num,
		"limit": p.Limit,
		"total": total,
		"pages": pages,
	}
	if p.Num < pages {
		meta["nextPage"] = p.Num + 1
	}
	if p.Num > 1 {
		meta["prevPage"] = p.Num - 1
	}
	return meta
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
