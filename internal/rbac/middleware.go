package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/membership/internal/platform/httpx"
	"github.com/odyssey-erp/membership/internal/shared"
)

// ForbiddenMessage is returned when the caller lacks the required role.
const ForbiddenMessage = "Unauthorized. Only admins can perform this action."

// RoleLookup resolves the roles of a user.
type RoleLookup interface {
	RolesFor(ctx context.Context, userID int64) ([]string, error)
}

// Middleware wires role checks for HTTP handlers.
type Middleware struct {
	Roles  RoleLookup
	Logger *slog.Logger
}

// RequireRole lets the request through only when the identity in context holds
// role. Missing identities are rejected the same way as missing roles.
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok || m.Roles == nil {
				httpx.Message(w, http.StatusForbidden, ForbiddenMessage)
				return
			}
			roles, err := m.Roles.RolesFor(r.Context(), identity.UserID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require role", slog.String("role", role), slog.Any("error", err))
				}
				httpx.Error(w, http.StatusInternalServerError, "Failed to verify role.")
				return
			}
			if !Allowed(roles, role) {
				httpx.Message(w, http.StatusForbidden, ForbiddenMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
