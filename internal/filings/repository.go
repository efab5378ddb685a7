package filings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/praxis-compliance/praxis/internal/tenant"
)

var (
	ErrNotFound = errors.New("filings: not found")
	// ErrInvalidTransition reports an update that would skip or rewind the
	// filing lifecycle.
	ErrInvalidTransition = errors.New("filings: invalid status transition")
)

const filingColumns = "id, client_id, kind, period, status, due_date, submitted_at, decided_at, rejection_reason, created_by, created_at, updated_at"

// Repository reads and writes filing rows through a tenant-scoped
// accessor.
type Repository interface {
	List(ctx context.Context, scope *tenant.Accessor, req ListFilingsRequest) ([]Filing, int, error)
	Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Filing, error)
	Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*Filing, error)
	Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error
	// Transition applies updates only while the filing still has the
	// expected status, in one statement, so two concurrent submits cannot
	// both win.
	Transition(ctx context.Context, scope *tenant.Accessor, id int64, from string, updates map[string]any) error
	ClientExists(ctx context.Context, scope *tenant.Accessor, clientID int64) (bool, error)
}

type repository struct{}

// NewRepository constructs the filing repository.
func NewRepository() Repository {
	return repository{}
}

func (repository) List(ctx context.Context, scope *tenant.Accessor, req ListFilingsRequest) ([]Filing, int, error) {
	var preds []tenant.Predicate
	if req.ClientID != nil {
		preds = append(preds, tenant.Eq("client_id", *req.ClientID))
	}
	if req.Status != nil {
		preds = append(preds, tenant.Eq("status", *req.Status))
	}

	total, err := scope.Count(ctx, tenant.Filings, preds...)
	if err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var result []Filing
	err = scope.Select(ctx, tenant.Filings, tenant.Query{
		Columns: filingColumns,
		Where:   preds,
		OrderBy: "created_at DESC",
		Limit:   limit,
		Offset:  req.Offset,
	}, func(rows pgx.Rows) error {
		for rows.Next() {
			var f Filing
			if err := scanFiling(rows, &f); err != nil {
				return err
			}
			result = append(result, f)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (repository) Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Filing, error) {
	var f Filing
	err := scope.Get(ctx, tenant.Filings, filingColumns, id, func(row pgx.Row) error {
		return scanFiling(row, &f)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (repository) Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*Filing, error) {
	var f Filing
	err := scope.Insert(ctx, tenant.Filings, values, filingColumns, func(row pgx.Row) error {
		return scanFiling(row, &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (repository) Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	affected, err := scope.Update(ctx, tenant.Filings, updates, tenant.Eq("id", id))
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r repository) Transition(ctx context.Context, scope *tenant.Accessor, id int64, from string, updates map[string]any) error {
	affected, err := scope.Update(ctx, tenant.Filings, updates,
		tenant.Eq("id", id), tenant.Eq("status", from))
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	// Zero rows means either a missing filing or a stale status. Look the
	// row up to tell the two apart.
	if _, err := r.Get(ctx, scope, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (repository) ClientExists(ctx context.Context, scope *tenant.Accessor, clientID int64) (bool, error) {
	n, err := scope.Count(ctx, tenant.Clients, tenant.Eq("id", clientID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFiling(row rowScanner, f *Filing) error {
	return row.Scan(&f.ID, &f.ClientID, &f.Kind, &f.Period, &f.Status,
		&f.DueDate, &f.SubmittedAt, &f.DecidedAt, &f.RejectionReason,
		&f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
}
