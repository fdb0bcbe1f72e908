package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/odyssey-erp/membership/internal/platform/db"
)

// ErrRoleRequired is returned when assigning an empty role name.
var ErrRoleRequired = errors.New("rbac: role name required")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Service looks up and grants user roles.
type Service struct {
	db db.Querier
}

// NewService constructs a Service backed by the provided pool.
func NewService(conn db.Querier) *Service {
	return &Service{db: conn}
}

// RolesFor returns the role names held by userID.
func (s *Service) RolesFor(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := psql.Select("role").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("rbac: build roles: %w", err)
	}
	var roles []string
	if err := pgxscan.Select(ctx, s.db, &roles, query, args...); err != nil {
		return nil, fmt.Errorf("rbac: roles for %d: %w", userID, err)
	}
	return roles, nil
}

// Assign grants role to userID. Assigning an already held role is a no-op
// that returns the existing row.
func (s *Service) Assign(ctx context.Context, userID int64, role string) (UserRole, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return UserRole{}, ErrRoleRequired
	}
	query, args, err := psql.Insert("user_roles").
		Columns("user_id", "role").
		Values(userID, role).
		Suffix("ON CONFLICT (user_id, role) DO UPDATE SET updated_at = user_roles.updated_at RETURNING id, user_id, role, created_at, updated_at").
		ToSql()
	if err != nil {
		return UserRole{}, fmt.Errorf("rbac: build assign: %w", err)
	}
	var assigned UserRole
	if err := pgxscan.Get(ctx, s.db, &assigned, query, args...); err != nil {
		return UserRole{}, fmt.Errorf("rbac: assign %s to %d: %w", role, userID, err)
	}
	return assigned, nil
}
