package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/praxis-compliance/praxis/internal/tenant"
)

var (
	ErrNotFound   = errors.New("users: not found")
	ErrEmailTaken = errors.New("users: email already in use")
)

const userColumns = "id, email, name, role, is_active, created_at, updated_at"

// Repository reads and writes user rows through a tenant-scoped accessor.
// The password hash never leaves the auth package; this repository only
// handles profile fields.
type Repository interface {
	List(ctx context.Context, scope *tenant.Accessor, req ListUsersRequest) ([]User, int, error)
	Get(ctx context.Context, scope *tenant.Accessor, id int64) (*User, error)
	Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error
}

type repository struct{}

// NewRepository constructs the user repository.
func NewRepository() Repository {
	return repository{}
}

func (repository) List(ctx context.Context, scope *tenant.Accessor, req ListUsersRequest) ([]User, int, error) {
	var preds []tenant.Predicate
	if req.Role != nil {
		preds = append(preds, tenant.Eq("role", *req.Role))
	}
	if req.Active != nil {
		preds = append(preds, tenant.Eq("is_active", *req.Active))
	}

	total, err := scope.Count(ctx, tenant.Users, preds...)
	if err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var result []User
	err = scope.Select(ctx, tenant.Users, tenant.Query{
		Columns: userColumns,
		Where:   preds,
		OrderBy: "email ASC",
		Limit:   limit,
		Offset:  req.Offset,
	}, func(rows pgx.Rows) error {
		for rows.Next() {
			var u User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			result = append(result, u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (repository) Get(ctx context.Context, scope *tenant.Accessor, id int64) (*User, error) {
	var u User
	err := scope.Get(ctx, tenant.Users, userColumns, id, func(row pgx.Row) error {
		return scanUser(row, &u)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (repository) Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	affected, err := scope.Update(ctx, tenant.Users, updates, tenant.Eq("id", id))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_users_email" {
			return ErrEmailTaken
		}
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
}
