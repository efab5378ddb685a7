package authz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDecisionStore persists access decisions and security incidents into
// Postgres.
type PGDecisionStore struct {
	pool *pgxpool.Pool
}

// NewPGDecisionStore returns a store over the pool.
func NewPGDecisionStore(pool *pgxpool.Pool) *PGDecisionStore {
	return &PGDecisionStore{pool: pool}
}

// InsertDecision appends one access decision.
func (s *PGDecisionStore) InsertDecision(ctx context.Context, d AccessDecision) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO access_decisions
			(id, user_id, tenant_id, role, module, action, resource_type, resource_id, granted, incident, resolved_tenant_id, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, 0), $9, $10, NULLIF($11, 0), NULLIF($12, ''), $13)`,
		d.ID, d.UserID, d.TenantID, string(d.Role), d.Module, d.Action,
		d.ResourceType, d.ResourceID, d.Granted, d.Incident, d.ResolvedTenantID, d.Reason, d.At)
	return err
}

// InsertIncident appends one security incident derived from a decision.
func (s *PGDecisionStore) InsertIncident(ctx context.Context, d AccessDecision) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO security_incidents
			(decision_id, user_id, requested_tenant_id, resolved_tenant_id, resource_type, resource_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.UserID, d.TenantID, d.ResolvedTenantID, d.ResourceType, d.ResourceID, d.At)
	return err
}
