package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/emberline/glowmart/internal/domain/catalog"
)

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	TotalQty    int             `json:"totalQty"`
}

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	TotalQty    int             `json:"totalQty"`
	TotalSold   int             `json:"totalSold"`
	QtyLeft     int             `json:"qtyLeft"`
	Reviews     []string        `json:"reviews"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Images:      p.Images,
		Price:       p.Price,
		TotalQty:    p.TotalQty,
		TotalSold:   p.TotalSold,
		QtyLeft:     p.QtyLeft(),
		Reviews:     p.Reviews,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []catalog.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Brand == "" || req.Category == "" {
		respondError(w, http.StatusBadRequest, "name, brand and category are required")
		return
	}

	brand := strings.ToLower(req.Brand)
	category := strings.ToLower(req.Category)

	brandTaxon, err := h.taxa.GetByName(r.Context(), catalog.KindBrand, brand)
	if err != nil {
		if errors.Is(err, catalog.ErrTaxonNotFound) {
			respondError(w, http.StatusUnauthorized, "brand not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	categoryTaxon, err := h.taxa.GetByName(r.Context(), catalog.KindCategory, category)
	if err != nil {
		if errors.Is(err, catalog.ErrTaxonNotFound) {
			respondError(w, http.StatusUnauthorized, "category not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p := &catalog.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Brand:       brand,
		Category:    category,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Images:      req.Images,
		UserID:      UserIDFromContext(r.Context()),
		Price:       req.Price,
		TotalQty:    req.TotalQty,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		if errors.Is(err, catalog.ErrProductExists) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Catalog bookkeeping: the brand and category keep product references.
	for _, t := range []struct {
		kind catalog.TaxonKind
		id   string
	}{
		{catalog.KindBrand, brandTaxon.ID},
		{catalog.KindCategory, categoryTaxon.ID},
	} {
		if err := h.taxa.AppendProduct(r.Context(), t.kind, t.id, p.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "product created",
		"product": toProductResponse(p),
	})
}

// parseProductFilter reads the listing query parameters. The price range
// arrives as "lo-hi".
func parseProductFilter(r *http.Request) catalog.ProductFilter {
	q := r.URL.Query()
	f := catalog.ProductFilter{
		Name:     q.Get("name"),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		Color:    q.Get("colors"),
		Size:     q.Get("sizes"),
	}
	if pr := q.Get("price"); pr != "" {
		if lo, hi, ok := strings.Cut(pr, "-"); ok {
			if v, err := decimal.NewFromString(strings.TrimSpace(lo)); err == nil {
				f.PriceMin = &v
			}
			if v, err := decimal.NewFromString(strings.TrimSpace(hi)); err == nil {
				f.PriceMax = &v
			}
		}
	}
	return f
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	products, total, err := h.products.List(r.Context(), parseProductFilter(r), p.Limit, p.Offset())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := pageMeta(p, total)
	payload["products"] = toProductResponses(products)
	respondSuccess(w, http.StatusOK, payload)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{"product": toProductResponse(p)})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), catalog.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Brand:       strings.ToLower(req.Brand),
		Category:    strings.ToLower(req.Category),
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Price:       req.Price,
		TotalQty:    req.TotalQty,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "product updated",
		"product": toProductResponse(p),
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "product deleted",
		"product": toProductResponse(p),
	})
}
