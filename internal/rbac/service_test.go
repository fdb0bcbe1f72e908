package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewService(mock), mock
}

func TestRolesFor(t *testing.T) {
	t.Run("Should return role names ordered", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT role FROM user_roles WHERE user_id = \$1 ORDER BY role`).
			WithArgs(int64(3)).
			WillReturnRows(mock.NewRows([]string{"role"}).AddRow("admin").AddRow("member"))

		roles, err := svc.RolesFor(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin", "member"}, roles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Should wrap query errors", func(t *testing.T) {
		svc, mock := newMockService(t)
		boom := errors.New("db down")
		mock.ExpectQuery(`SELECT role FROM user_roles`).WillReturnError(boom)

		_, err := svc.RolesFor(context.Background(), 3)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAssign(t *testing.T) {
	t.Run("Should upsert the role", func(t *testing.T) {
		svc, mock := newMockService(t)
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO user_roles \(user_id,role\) VALUES \(\$1,\$2\) ON CONFLICT \(user_id, role\) DO UPDATE`).
			WithArgs(int64(3), "admin").
			WillReturnRows(mock.NewRows([]string{"id", "user_id", "role", "created_at", "updated_at"}).
				AddRow(int64(1), int64(3), "admin", now, now))

		assigned, err := svc.Assign(context.Background(), 3, " admin ")
		require.NoError(t, err)
		assert.Equal(t, "admin", assigned.Role)
		assert.Equal(t, int64(3), assigned.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Should reject an empty role", func(t *testing.T) {
		svc, mock := newMockService(t)
		_, err := svc.Assign(context.Background(), 3, "  ")
		assert.ErrorIs(t, err, ErrRoleRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
