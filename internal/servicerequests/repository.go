package servicerequests

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/praxis-compliance/praxis/internal/tenant"
)

var (
	ErrNotFound = errors.New("servicerequests: not found")
	ErrClosed   = errors.New("servicerequests: request already closed")
)

const requestColumns = "id, subject, body, priority, status, assigned_to, opened_by, closed_at, created_at, updated_at"

// Repository reads and writes service request rows through a
// tenant-scoped accessor.
type Repository interface {
	List(ctx context.Context, scope *tenant.Accessor, req ListRequests) ([]ServiceRequest, int, error)
	Get(ctx context.Context, scope *tenant.Accessor, id int64) (*ServiceRequest, error)
	Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*ServiceRequest, error)
	// UpdateOpen applies updates only while the request is not yet closed.
	UpdateOpen(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error
	AssigneeExists(ctx context.Context, scope *tenant.Accessor, userID int64) (bool, error)
}

type repository struct{}

// NewRepository constructs the service request repository.
func NewRepository() Repository {
	return repository{}
}

func (repository) List(ctx context.Context, scope *tenant.Accessor, req ListRequests) ([]ServiceRequest, int, error) {
	var preds []tenant.Predicate
	if req.Status != nil {
		preds = append(preds, tenant.Eq("status", *req.Status))
	}
	if req.Assignee != nil {
		preds = append(preds, tenant.Eq("assigned_to", *req.Assignee))
	}

	total, err := scope.Count(ctx, tenant.ServiceRequests, preds...)
	if err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var result []ServiceRequest
	err = scope.Select(ctx, tenant.ServiceRequests, tenant.Query{
		Columns: requestColumns,
		Where:   preds,
		OrderBy: "created_at DESC",
		Limit:   limit,
		Offset:  req.Offset,
	}, func(rows pgx.Rows) error {
		for rows.Next() {
			var sr ServiceRequest
			if err := scanRequest(rows, &sr); err != nil {
				return err
			}
			result = append(result, sr)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (repository) Get(ctx context.Context, scope *tenant.Accessor, id int64) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := scope.Get(ctx, tenant.ServiceRequests, requestColumns, id, func(row pgx.Row) error {
		return scanRequest(row, &sr)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (repository) Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := scope.Insert(ctx, tenant.ServiceRequests, values, requestColumns, func(row pgx.Row) error {
		return scanRequest(row, &sr)
	})
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (r repository) UpdateOpen(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	affected, err := scope.Update(ctx, tenant.ServiceRequests, updates,
		tenant.Eq("id", id), tenant.Neq("status", StatusClosed))
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, scope, id); err != nil {
		return err
	}
	return ErrClosed
}

func (repository) AssigneeExists(ctx context.Context, scope *tenant.Accessor, userID int64) (bool, error) {
	n, err := scope.Count(ctx, tenant.Users, tenant.Eq("id", userID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, sr *ServiceRequest) error {
	return row.Scan(&sr.ID, &sr.Subject, &sr.Body, &sr.Priority, &sr.Status,
		&sr.AssignedTo, &sr.OpenedBy, &sr.ClosedAt, &sr.CreatedAt, &sr.UpdatedAt)
}
