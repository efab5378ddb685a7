package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/praxis-compliance/praxis/internal/tenant"
)

var ErrNotFound = errors.New("clients: not found")

const clientColumns = "id, name, registration_no, jurisdiction, email, status, created_by, created_at, updated_at"

// Repository reads and writes client rows. Every method takes a
// tenant-scoped accessor; there is no path to the raw pool.
type Repository interface {
	List(ctx context.Context, scope *tenant.Accessor, req ListClientsRequest) ([]Client, int, error)
	Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Client, error)
	Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*Client, error)
	Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error
}

type repository struct{}

// NewRepository constructs the client repository.
func NewRepository() Repository {
	return repository{}
}

func (repository) List(ctx context.Context, scope *tenant.Accessor, req ListClientsRequest) ([]Client, int, error) {
	var preds []tenant.Predicate
	if req.Status != nil {
		preds = append(preds, tenant.Eq("status", *req.Status))
	}
	if req.Search != nil && *req.Search != "" {
		preds = append(preds, tenant.ILike("name", "%"+*req.Search+"%"))
	}

	total, err := scope.Count(ctx, tenant.Clients, preds...)
	if err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var result []Client
	err = scope.Select(ctx, tenant.Clients, tenant.Query{
		Columns: clientColumns,
		Where:   preds,
		OrderBy: "name ASC",
		Limit:   limit,
		Offset:  req.Offset,
	}, func(rows pgx.Rows) error {
		for rows.Next() {
			var c Client
			if err := scanClient(rows, &c); err != nil {
				return err
			}
			result = append(result, c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (repository) Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Client, error) {
	var c Client
	err := scope.Get(ctx, tenant.Clients, clientColumns, id, func(row pgx.Row) error {
		return scanClient(row, &c)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (repository) Create(ctx context.Context, scope *tenant.Accessor, values map[string]any) (*Client, error) {
	var c Client
	err := scope.Insert(ctx, tenant.Clients, values, clientColumns, func(row pgx.Row) error {
		return scanClient(row, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (repository) Update(ctx context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	affected, err := scope.Update(ctx, tenant.Clients, updates, tenant.Eq("id", id))
	if err != nil {
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

func scanClient(row rowScanner, c *Client) error {
	return row.Scan(&c.ID, &c.Name, &c.RegistrationNo, &c.Jurisdiction,
		&c.Email, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
}
