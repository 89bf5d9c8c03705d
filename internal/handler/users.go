package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/emberline/glowmart/internal/auth"
	"github.com/emberline/glowmart/internal/domain/user"
)

type registerRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID                 string                `json:"id"`
	Fullname           string                `json:"fullname"`
	Email              string                `json:"email"`
	Orders             []string              `json:"orders"`
	WishList           []string              `json:"wishList"`
	IsAdmin            bool                  `json:"isAdmin"`
	HasShippingAddress bool                  `json:"hasShippingAddress"`
	ShippingAddress    *user.ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Fullname:           u.Fullname,
		Email:              u.Email,
		Orders:             u.Orders,
		WishList:           u.WishList,
		IsAdmin:            u.IsAdmin,
		HasShippingAddress: u.HasShippingAddress,
		ShippingAddress:    u.ShippingAddress,
		CreatedAt:          u.CreatedAt,
	}
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Fullname == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "fullname, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusCreated, envelope{
		"message": "user registered",
		"user":    toUserResponse(u),
	})
}

func (h *Handler) loginUser(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "login successful",
		"token":   token,
		"user":    toUserResponse(u),
	})
}

func (h *Handler) userProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{"user": toUserResponse(u)})
}

func (h *Handler) updateShippingAddress(w http.ResponseWriter, r *http.Request) {
	var addr user.ShippingAddress
	if err := decodeJSON(r, &addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.UpdateShippingAddress(r.Context(), UserIDFromContext(r.Context()), addr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondNotFound(w)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "shipping address updated",
		"user":    toUserResponse(u),
	})
}
