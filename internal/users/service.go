package users

import (
	"context"
	"strings"
	"time"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// Service coordinates user profile operations.
type Service struct {
	scopes *tenant.Factory
	repo   Repository
}

// NewService constructs a Service.
func NewService(scopes *tenant.Factory, repo Repository) *Service {
	return &Service{scopes: scopes, repo: repo}
}

// List returns the firm's members with the total count.
func (s *Service) List(ctx context.Context, actor authz.Identity, req ListUsersRequest) ([]User, int, error) {
	return s.repo.List(ctx, s.scopes.Scope(actor.TenantID), req)
}

// Get fetches one user within the caller's tenant.
func (s *Service) Get(ctx context.Context, actor authz.Identity, id int64) (*User, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), id)
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, actor authz.Identity) (*User, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), actor.UserID)
}

// UpdateProfile applies the non-nil fields to a user of the caller's
// tenant. Role changes go through a separate admin path.
func (s *Service) UpdateProfile(ctx context.Context, actor authz.Identity, id int64, req UpdateProfileRequest) (*User, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(*req.Email)
	}
	scope := s.scopes.Scope(actor.TenantID)
	if err := s.repo.Update(ctx, scope, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, actor authz.Identity, id int64, active bool) (*User, error) {
	scope := s.scopes.Scope(actor.TenantID)
	err := s.repo.Update(ctx, scope, id, map[string]any{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
