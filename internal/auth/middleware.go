package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/membership/internal/platform/httpx"
	"github.com/odyssey-erp/membership/internal/shared"
)

// UserChecker confirms the token subject still exists.
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Authenticator verifies bearer tokens and stores the identity in context.
type Authenticator struct {
	Tokens *TokenService
	Users  UserChecker
	Logger *slog.Logger
}

// Require rejects requests without a valid bearer token with 401.
func (a Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.Message(w, http.StatusUnauthorized, httpx.UnauthenticatedMessage)
			return
		}
		identity, err := a.Tokens.Verify(token)
		if err != nil {
			a.logger().Debug("bearer token rejected", slog.Any("error", err))
			httpx.Message(w, http.StatusUnauthorized, httpx.UnauthenticatedMessage)
			return
		}
		if a.Users != nil {
			exists, err := a.Users.Exists(r.Context(), identity.UserID)
			if err != nil {
				a.logger().Error("resolve token subject", slog.Int64("user_id", identity.UserID), slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			if !exists {
				httpx.Message(w, http.StatusUnauthorized, httpx.UnauthenticatedMessage)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

func (a Authenticator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
