package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/emberline/glowmart/internal/domain/catalog"
)

type taxonRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type taxonResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image,omitempty"`
	Products  []string  `json:"products"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTaxonResponse(t *catalog.Taxon) taxonResponse {
	return taxonResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Image:     t.Image,
		Products:  t.Products,
		CreatedAt: t.CreatedAt,
	}
}

// payloadKey names the response field per taxon kind: "category", "brand",
// "color".
func payloadKey(kind catalog.TaxonKind) string {
	return string(kind)
}

// pluralKey names the list response field: "categories", "brands", "colors".
func pluralKey(kind catalog.TaxonKind) string {
	k := string(kind)
	if strings.HasSuffix(k, "y") {
		return k[:len(k)-1] + "ies"
	}
	return k + "s"
}

func (h *Handler) createTaxon(kind catalog.TaxonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taxonRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		name := strings.ToLower(req.Name)
		t := &catalog.Taxon{
			ID:     uuid.New().String(),
			Name:   name,
			Slug:   slug.Make(name),
			Image:  req.Image,
			UserID: UserIDFromContext(r.Context()),
		}
		if err := h.taxa.Create(r.Context(), kind, t); err != nil {
			if errors.Is(err, catalog.ErrTaxonExists) {
				respondError(w, http.StatusUnauthorized, payloadKey(kind)+" already exists")
				return
			}
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondSuccess(w, http.StatusCreated, envelope{
			"message":        payloadKey(kind) + " created",
			payloadKey(kind): toTaxonResponse(t),
		})
	}
}

func (h *Handler) listTaxa(kind catalog.TaxonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePage(r)
		taxa, total, err := h.taxa.List(r.Context(), kind, p.Limit, p.Offset())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]taxonResponse, len(taxa))
		for i := range taxa {
			out[i] = toTaxonResponse(&taxa[i])
		}
		payload := pageMeta(p, total)
		payload[pluralKey(kind)] = out
		respondSuccess(w, http.StatusOK, payload)
	}
}

func (h *Handler) getTaxon(kind catalog.TaxonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.taxa.GetByID(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, catalog.ErrTaxonNotFound) {
				respondNotFound(w)
				return
			}
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondSuccess(w, http.StatusOK, envelope{payloadKey(kind): toTaxonResponse(t)})
	}
}

func (h *Handler) updateTaxon(kind catalog.TaxonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taxonRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := h.taxa.Update(r.Context(), kind, chi.URLParam(r, "id"),
			strings.ToLower(req.Name), req.Image)
		if err != nil {
			if errors.Is(err, catalog.ErrTaxonNotFound) {
				respondNotFound(w)
				return
			}
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondSuccess(w, http.StatusOK, envelope{
			"message":        payloadKey(kind) + " updated",
			payloadKey(kind): toTaxonResponse(t),
		})
	}
}

func (h *Handler) deleteTaxon(kind catalog.TaxonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.taxa.Delete(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, catalog.ErrTaxonNotFound) {
				respondNotFound(w)
				return
			}
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondSuccess(w, http.StatusOK, envelope{
			"message":        payloadKey(kind) + " deleted",
			payloadKey(kind): toTaxonResponse(t),
		})
	}
}
