package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/praxis-compliance/praxis/internal/tenant"
)

var ErrNotFound = errors.New("documents: not found")

const documentColumns = "t.id, t.client_id, t.title, t.file_name, t.content_type, t.size_bytes, t.uploaded_by, t.created_at"

// Repository reads and writes document rows through the client join; a
// document is only visible when its client belongs to the scope's tenant.
type Repository interface {
	ListByClient(ctx context.Context, scope *tenant.Accessor, req ListDocumentsRequest) ([]Document, error)
	Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Document, error)
	Create(ctx context.Context, scope *tenant.Accessor, clientID int64, values map[string]any) (*Document, error)
	Delete(ctx context.Context, scope *tenant.Accessor, id int64) error
}

type repository struct{}

// NewRepository constructs the document repository.
func NewRepository() Repository {
	return repository{}
}

func (repository) ListByClient(ctx context.Context, scope *tenant.Accessor, req ListDocumentsRequest) ([]Document, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var result []Document
	err := scope.SelectChild(ctx, tenant.Documents, tenant.Query{
		Columns: documentColumns,
		Where:   []tenant.Predicate{tenant.Eq("t.client_id", req.ClientID)},
		OrderBy: "t.created_at DESC",
		Limit:   limit,
		Offset:  req.Offset,
	}, func(rows pgx.Rows) error {
		for rows.Next() {
			var d Document
			if err := scanDocument(rows, &d); err != nil {
				return err
			}
			result = append(result, d)
		}
		return nil
	})
	return result, err
}

func (repository) Get(ctx context.Context, scope *tenant.Accessor, id int64) (*Document, error) {
	var d Document
	err := scope.GetChild(ctx, tenant.Documents, documentColumns, id, func(row pgx.Row) error {
		return scanDocument(row, &d)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (repository) Create(ctx context.Context, scope *tenant.Accessor, clientID int64, values map[string]any) (*Document, error) {
	var d Document
	err := scope.InsertChild(ctx, tenant.Documents, clientID, values,
		"id, client_id, title, file_name, content_type, size_bytes, uploaded_by, created_at",
		func(row pgx.Row) error {
			return scanDocument(row, &d)
		})
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (repository) Delete(ctx context.Context, scope *tenant.Accessor, id int64) error {
	affected, err := scope.DeleteChild(ctx, tenant.Documents, id)
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

func scanDocument(row rowScanner, d *Document) error {
	return row.Scan(&d.ID, &d.ClientID, &d.Title, &d.FileName,
		&d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt)
}
