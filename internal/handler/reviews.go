package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/emberline/glowmart/internal/domain/catalog"
	"github.com/emberline/glowmart/internal/domain/review"
)

type reviewRequest struct {
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewResponse(rv *review.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		UserID:    rv.UserID,
		ProductID: rv.ProductID,
		Message:   rv.Message,
		Rating:    rv.Rating,
		CreatedAt: rv.CreatedAt,
	}
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	productID := chi.URLParam(r, "productID")
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusUnauthorized, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	userID := UserIDFromContext(r.Context())
	reviewed, err := h.reviews.HasUserReviewed(r.Context(), userID, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if reviewed {
		respondError(w, http.StatusUnauthorized, review.ErrAlreadyReviewed.Error())
		return
	}

	rv := &review.Review{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Message:   req.Message,
		Rating:    req.Rating,
	}
	if err := rv.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reviews.Create(r.Context(), rv); err != nil {
		if errors.Is(err, review.ErrAlreadyReviewed) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "review created",
		"review":  toReviewResponse(rv),
	})
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	reviews, total, err := h.reviews.List(r.Context(), p.Limit, p.Offset())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	payload := pageMeta(p, total)
	payload["reviews"] = out
	respondSuccess(w, http.StatusOK, payload)
}

func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, review.ErrRatingRange.Error())
		return
	}

	rv, err := h.reviews.Update(r.Context(), chi.URLParam(r, "id"),
		UserIDFromContext(r.Context()), req.Message, req.Rating)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "review updated",
		"review":  toReviewResponse(rv),
	})
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id"), UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "review deleted",
		"review":  toReviewResponse(rv),
	})
}
