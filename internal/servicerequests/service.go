package servicerequests

import (
	"context"
	"time"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// Service coordinates service request operations.
type Service struct {
	scopes *tenant.Factory
	repo   Repository
}

// NewService constructs a Service.
func NewService(scopes *tenant.Factory, repo Repository) *Service {
	return &Service{scopes: scopes, repo: repo}
}

// List returns the caller's service requests with the total count.
func (s *Service) List(ctx context.Context, actor authz.Identity, req ListRequests) ([]ServiceRequest, int, error) {
	return s.repo.List(ctx, s.scopes.Scope(actor.TenantID), req)
}

// Get fetches one request within the caller's tenant.
func (s *Service) Get(ctx context.Context, actor authz.Identity, id int64) (*ServiceRequest, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), id)
}

// Create opens a new request on behalf of the caller.
func (s *Service) Create(ctx context.Context, actor authz.Identity, req CreateRequest) (*ServiceRequest, error) {
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	now := time.Now().UTC()
	return s.repo.Create(ctx, s.scopes.Scope(actor.TenantID), map[string]any{
		"subject":    req.Subject,
		"body":       req.Body,
		"priority":   priority,
		"status":     StatusOpen,
		"opened_by":  actor.UserID,
		"created_at": now,
		"updated_at": now,
	})
}

// Assign hands an open request to a staff member of the same tenant. An
// assignee id from another tenant reads as absent.
func (s *Service) Assign(ctx context.Context, actor authz.Identity, id int64, assigneeID int64) (*ServiceRequest, error) {
	scope := s.scopes.Scope(actor.TenantID)
	ok, err := s.repo.AssigneeExists(ctx, scope, assigneeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	err = s.repo.UpdateOpen(ctx, scope, id, map[string]any{
		"status":      StatusAssigned,
		"assigned_to": assigneeID,
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

// Close resolves a request. Closing twice reports ErrClosed.
func (s *Service) Close(ctx context.Context, actor authz.Identity, id int64) (*ServiceRequest, error) {
	now := time.Now().UTC()
	scope := s.scopes.Scope(actor.TenantID)
	err := s.repo.UpdateOpen(ctx, scope, id, map[string]any{
		"status":     StatusClosed,
		"closed_at":  now,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
