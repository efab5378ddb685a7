package clients

import (
	"context"
	"time"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// Service coordinates client operations. Every method resolves a fresh
// tenant scope from the caller's identity.
type Service struct {
	scopes *tenant.Factory
	repo   Repository
}

// NewService constructs a Service.
func NewService(scopes *tenant.Factory, repo Repository) *Service {
	return &Service{scopes: scopes, repo: repo}
}

// List returns the caller's clients with the total count.
func (s *Service) List(ctx context.Context, actor authz.Identity, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, s.scopes.Scope(actor.TenantID), req)
}

// Get fetches one client within the caller's tenant.
func (s *Service) Get(ctx context.Context, actor authz.Identity, id int64) (*Client, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), id)
}

// Create registers a new client under the caller's tenant.
func (s *Service) Create(ctx context.Context, actor authz.Identity, req CreateClientRequest) (*Client, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, s.scopes.Scope(actor.TenantID), map[string]any{
		"name":            req.Name,
		"registration_no": req.RegistrationNo,
		"jurisdiction":    req.Jurisdiction,
		"email":           req.Email,
		"status":          StatusActive,
		"created_by":      actor.UserID,
		"created_at":      now,
		"updated_at":      now,
	})
}

// Update applies the non-nil fields of the request.
func (s *Service) Update(ctx context.Context, actor authz.Identity, id int64, req UpdateClientRequest) (*Client, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.RegistrationNo != nil {
		updates["registration_no"] = *req.RegistrationNo
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	scope := s.scopes.Scope(actor.TenantID)
	if err := s.repo.Update(ctx, scope, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
