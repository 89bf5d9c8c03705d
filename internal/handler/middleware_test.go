package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberline/glowmart/internal/domain/user"
)

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserIDFromContext(r.Context())))
	})
}

func TestAuthenticate(t *testing.T) {
	h := newTestHandler(nil, nil, nil)
	protected := h.Authenticate(echoUserID())

	t.Run("valid token passes user id through", func(t *testing.T) {
		token, err := h.tokens.Issue("u1")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", w.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	users := &mockUserRepo{byID: map[string]*user.User{
		"admin":    {ID: "admin", IsAdmin: true},
		"customer": {ID: "customer"},
	}}
	h := newTestHandler(users, nil, nil)
	protected := h.Authenticate(h.RequireAdmin(echoUserID()))

	request := func(userID string) *httptest.ResponseRecorder {
		token, err := h.tokens.Issue(userID)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, request("admin").Code)
	assert.Equal(t, http.StatusForbidden, request("customer").Code)
	assert.Equal(t, http.StatusUnauthorized, request("ghost").Code, "deleted account loses access")
}
