package documents

import (
	"context"
	"time"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// Service coordinates document metadata operations.
type Service struct {
	scopes *tenant.Factory
	repo   Repository
}

// NewService constructs a Service.
func NewService(scopes *tenant.Factory, repo Repository) *Service {
	return &Service{scopes: scopes, repo: repo}
}

// ListByClient returns documents for one client of the caller's tenant.
func (s *Service) ListByClient(ctx context.Context, actor authz.Identity, req ListDocumentsRequest) ([]Document, error) {
	return s.repo.ListByClient(ctx, s.scopes.Scope(actor.TenantID), req)
}

// Get fetches one document, visible only through the caller's tenant.
func (s *Service) Get(ctx context.Context, actor authz.Identity, id int64) (*Document, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), id)
}

// Create records document metadata under a client. The insert fails with
// ErrNotFound when the client does not belong to the caller's tenant.
func (s *Service) Create(ctx context.Context, actor authz.Identity, req CreateDocumentRequest) (*Document, error) {
	return s.repo.Create(ctx, s.scopes.Scope(actor.TenantID), req.ClientID, map[string]any{
		"title":        req.Title,
		"file_name":    req.FileName,
		"content_type": req.ContentType,
		"size_bytes":   req.SizeBytes,
		"uploaded_by":  actor.UserID,
		"created_at":   time.Now().UTC(),
	})
}

// Delete removes one document within the caller's tenant.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, id int64) error {
	return s.repo.Delete(ctx, s.scopes.Scope(actor.TenantID), id)
}
