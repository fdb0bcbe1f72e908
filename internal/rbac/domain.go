package rbac

import "time"

// RoleAdmin is the role required by admin-only routes.
const RoleAdmin = "admin"

// UserRole links a user to a named role. Holding the row is the whole grant.
type UserRole struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Allowed reports whether roles contains required exactly. There is no
// hierarchy and no wildcard.
func Allowed(roles []string, required string) bool {
	if required == "" {
		return false
	}
	for _, role := range roles {
		if role == required {
			return true
		}
	}
	return false
}
