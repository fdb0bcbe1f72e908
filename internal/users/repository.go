package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/membership/internal/platform/db"
	"github.com/odyssey-erp/membership/internal/shared"
)

const emailConstraint = "users_email_key"

var (
	psql          = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	publicColumns = []string{"id", "name", "email", "umur", "status_keanggotaan", "created_at", "updated_at"}
	allColumns    = append(append([]string{}, publicColumns...), "password")
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	db db.DB
}

// NewRepository constructs a repository.
func NewRepository(conn db.DB) *Repository {
	return &Repository{db: conn}
}

// Get returns the user with id, without the password hash.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	query, args, err := psql.Select(publicColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build get: %w", err)
	}
	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("users: get %d: %w", id, err)
	}
	return user, nil
}

// FindByEmail returns the user including the password hash for credential checks.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	query, args, err := psql.Select(allColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build find by email: %w", err)
	}
	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// EmailTaken reports whether another user already owns email. exceptID of zero
// checks every row.
func (r *Repository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	where := squirrel.And{squirrel.Eq{"email": email}}
	if exceptID > 0 {
		where = append(where, squirrel.NotEq{"id": exceptID})
	}
	sub, args, err := squirrel.Select("1").From("users").Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("users: build email taken: %w", err)
	}
	query, err := squirrel.Dollar.ReplacePlaceholders("SELECT EXISTS (" + sub + ")")
	if err != nil {
		return false, fmt.Errorf("users: build email taken: %w", err)
	}
	var taken bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("users: email taken: %w", err)
	}
	return taken, nil
}

// List returns one page of users ordered by id and the total row count.
func (r *Repository) List(ctx context.Context, req shared.PageRequest) ([]User, int, error) {
	countQuery, countArgs, err := psql.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("users: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	query, args, err := psql.Select(publicColumns...).
		From("users").
		OrderBy("id ASC").
		Limit(uint64(req.PerPage)).
		Offset(uint64(req.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("users: build list: %w", err)
	}
	users := make([]User, 0, req.PerPage)
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	return users, total, nil
}

// Create inserts user inside a transaction and returns the stored row.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	query, args, err := psql.Insert("users").
		Columns("name", "email", "password", "umur", "status_keanggotaan").
		Values(user.Name, user.Email, user.PasswordHash, user.Age, user.MembershipStatus).
		Suffix("RETURNING id, name, email, umur, status_keanggotaan, created_at, updated_at").
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build insert: %w", err)
	}
	var created User
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return pgxscan.Get(ctx, tx, &created, query, args...)
	})
	if err != nil {
		if db.IsUniqueViolation(err, emailConstraint) {
			return User{}, shared.ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("users: insert: %w", err)
	}
	return created, nil
}

// Update writes the allow-listed profile fields of user inside a transaction.
func (r *Repository) Update(ctx context.Context, user User) (User, error) {
	query, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("umur", user.Age).
		Set("status_keanggotaan", user.MembershipStatus).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING id, name, email, umur, status_keanggotaan, created_at, updated_at").
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("users: build update: %w", err)
	}
	var updated User
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return pgxscan.Get(ctx, tx, &updated, query, args...)
	})
	if err != nil {
		switch {
		case pgxscan.NotFound(err):
			return User{}, shared.ErrNotFound
		case db.IsUniqueViolation(err, emailConstraint):
			return User{}, shared.ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("users: update %d: %w", user.ID, err)
	}
	return updated, nil
}

// Delete hard-deletes the user inside a transaction. Role rows cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("users: build delete: %w", err)
	}
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("users: delete %d: %w", id, err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}
