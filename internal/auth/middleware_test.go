package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/membership/internal/auth"
	"github.com/odyssey-erp/membership/internal/shared"
)

type stubChecker struct {
	exists bool
	err    error
}

func (s stubChecker) Exists(context.Context, int64) (bool, error) {
	return s.exists, s.err
}

func protected(a auth.Authenticator) (http.Handler, *shared.Identity) {
	seen := &shared.Identity{}
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := shared.IdentityFromContext(r.Context())
		*seen = identity
		w.WriteHeader(http.StatusNoContent)
	})), seen
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthenticatorRequire(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 60, "membership")
	token, err := tokens.Issue(9, "ani@example.com")
	require.NoError(t, err)

	t.Run("Should pass the identity through context", func(t *testing.T) {
		h, seen := protected(auth.Authenticator{Tokens: tokens, Users: stubChecker{exists: true}})

		rr := call(h, "Bearer "+token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, int64(9), seen.UserID)
		assert.Equal(t, "ani@example.com", seen.Email)
	})
	t.Run("Should accept a lowercase scheme", func(t *testing.T) {
		h, _ := protected(auth.Authenticator{Tokens: tokens})
		assert.Equal(t, http.StatusNoContent, call(h, "bearer "+token).Code)
	})
	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + token,
		"bad token":      "Bearer not-a-token",
	} {
		t.Run("Should return 401 for "+name, func(t *testing.T) {
			h, _ := protected(auth.Authenticator{Tokens: tokens})
			rr := call(h, header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"message":"Unauthenticated."}`, rr.Body.String())
		})
	}
	t.Run("Should return 401 when the subject was deleted", func(t *testing.T) {
		h, _ := protected(auth.Authenticator{Tokens: tokens, Users: stubChecker{exists: false}})
		assert.Equal(t, http.StatusUnauthorized, call(h, "Bearer "+token).Code)
	})
	t.Run("Should return 500 when the subject cannot be resolved", func(t *testing.T) {
		h, _ := protected(auth.Authenticator{Tokens: tokens, Users: stubChecker{err: errors.New("db down")}})
		assert.Equal(t, http.StatusInternalServerError, call(h, "Bearer "+token).Code)
	})
}
