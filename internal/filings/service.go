package filings

import (
	"context"
	"time"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// Service coordinates the filing lifecycle. Every method resolves a fresh
// tenant scope from the caller's identity.
type Service struct {
	scopes *tenant.Factory
	repo   Repository
}

// NewService constructs a Service.
func NewService(scopes *tenant.Factory, repo Repository) *Service {
	return &Service{scopes: scopes, repo: repo}
}

// List returns the caller's filings with the total count.
func (s *Service) List(ctx context.Context, actor authz.Identity, req ListFilingsRequest) ([]Filing, int, error) {
	return s.repo.List(ctx, s.scopes.Scope(actor.TenantID), req)
}

// Get fetches one filing within the caller's tenant.
func (s *Service) Get(ctx context.Context, actor authz.Identity, id int64) (*Filing, error) {
	return s.repo.Get(ctx, s.scopes.Scope(actor.TenantID), id)
}

// Create opens a draft filing for a client of the caller's tenant. A
// client id from another tenant reads as absent.
func (s *Service) Create(ctx context.Context, actor authz.Identity, req CreateFilingRequest) (*Filing, error) {
	scope := s.scopes.Scope(actor.TenantID)
	ok, err := s.repo.ClientExists(ctx, scope, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	return s.repo.Create(ctx, scope, map[string]any{
		"client_id":  req.ClientID,
		"kind":       req.Kind,
		"period":     req.Period,
		"status":     StatusDraft,
		"due_date":   req.DueDate,
		"created_by": actor.UserID,
		"created_at": now,
		"updated_at": now,
	})
}

// Update edits the mutable fields of a draft. Submitted and decided
// filings are frozen.
func (s *Service) Update(ctx context.Context, actor authz.Identity, id int64, req UpdateFilingRequest) (*Filing, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Period != nil {
		updates["period"] = *req.Period
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	scope := s.scopes.Scope(actor.TenantID)
	if err := s.repo.Transition(ctx, scope, id, StatusDraft, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

// Submit moves a draft to submitted and stamps the submission time.
func (s *Service) Submit(ctx context.Context, actor authz.Identity, id int64) (*Filing, error) {
	now := time.Now().UTC()
	scope := s.scopes.Scope(actor.TenantID)
	err := s.repo.Transition(ctx, scope, id, StatusDraft, map[string]any{
		"status":       StatusSubmitted,
		"submitted_at": now,
		"updated_at":   now,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

// Accept records the authority's acceptance of a submitted filing.
func (s *Service) Accept(ctx context.Context, actor authz.Identity, id int64) (*Filing, error) {
	return s.decide(ctx, actor, id, StatusAccepted, nil)
}

// Reject records the authority's rejection with the stated reason.
func (s *Service) Reject(ctx context.Context, actor authz.Identity, id int64, reason string) (*Filing, error) {
	return s.decide(ctx, actor, id, StatusRejected, &reason)
}

func (s *Service) decide(ctx context.Context, actor authz.Identity, id int64, status string, reason *string) (*Filing, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     status,
		"decided_at": now,
		"updated_at": now,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	scope := s.scopes.Scope(actor.TenantID)
	if err := s.repo.Transition(ctx, scope, id, StatusSubmitted, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
