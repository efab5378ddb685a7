package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Evaluator decides permission requests against the matrix and, for
// resource-scoped requests, the ownership checker. Every call records
// exactly one AccessDecision, grants and denials alike.
type Evaluator struct {
	matrix *Matrix
	owners OwnershipChecker
	audit  Sink
	logger *slog.Logger
}

// NewEvaluator constructs an Evaluator. The sink must not be nil; denials
// that go unrecorded are invisible to security monitoring.
func NewEvaluator(matrix *Matrix, owners OwnershipChecker, audit Sink, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{matrix: matrix, owners: owners, audit: audit, logger: logger}
}

// HasPermission reports whether the actor may perform the requested
// permission. The matrix decision comes first; an ownership check only
// refines a matrix grant, never substitutes for it. The returned error
// carries the denial taxonomy for HTTP mapping.
func (e *Evaluator) HasPermission(ctx context.Context, actor Identity, perm Permission) (bool, error) {
	decision := AccessDecision{
		UserID:   actor.UserID,
		TenantID: actor.TenantID,
		Role:     actor.Role,
		Module:   perm.Module,
		Action:   perm.Action,
		At:       time.Now().UTC(),
	}
	if perm.Resource != nil {
		decision.ResourceType = perm.Resource.Type
		decision.ResourceID = perm.Resource.ID
	}
	defer func() {
		if e.audit != nil {
			e.audit.Record(ctx, decision)
		}
	}()

	// The wildcard is configuration-only. A request carrying it is denied
	// outright rather than expanded.
	if perm.Module == Wildcard || perm.Action == Wildcard {
		decision.Reason = "wildcard not accepted as input"
		return false, fmt.Errorf("%w: %s.%s", ErrPermissionDenied, perm.Module, perm.Action)
	}

	if !e.matrix.Lookup(actor.Role, perm.Module, perm.Action) {
		decision.Reason = "matrix denied"
		return false, fmt.Errorf("%w: %s.%s", ErrPermissionDenied, perm.Module, perm.Action)
	}

	if perm.Resource == nil {
		decision.Granted = true
		return true, nil
	}

	// The super administrator is not bound to a single tenant; its grants
	// cover resources in any tenant.
	if actor.Role != "" && actor.Role == e.matrix.GlobalRole() {
		decision.Granted = true
		return true, nil
	}

	// User records are self-service: a matrix grant on users lets a member
	// mutate their own row only. Touching somebody else's row additionally
	// requires the administrative users.manage grant. Reads stay
	// tenant-scoped like any other resource.
	if perm.Resource.Type == ResourceUsers && perm.Action != "view" && perm.Resource.ID != actor.UserID {
		if !e.matrix.Lookup(actor.Role, ResourceUsers, "manage") {
			decision.Reason = "user mutation limited to self"
			return false, fmt.Errorf("%w: %s.%s", ErrPermissionDenied, perm.Module, perm.Action)
		}
	}

	own, err := e.owners.BelongsToTenant(ctx, actor, *perm.Resource)
	if err != nil {
		decision.Reason = "ownership lookup failed"
		if errors.Is(err, ErrStorageUnavailable) {
			return false, err
		}
		if ctx.Err() != nil {
			// A cancelled check never resolves to allowed.
			return false, fmt.Errorf("%w: %v", ErrTenantIsolation, ctx.Err())
		}
		e.logger.Warn("ownership lookup error", slog.String("resource", perm.Resource.Type), slog.Any("error", err))
		return false, ErrTenantIsolation
	}
	if !own.Allowed {
		decision.Reason = "tenant ownership denied"
		if own.ResolvedTenant != 0 && own.ResolvedTenant != actor.TenantID {
			decision.Incident = true
			decision.ResolvedTenantID = own.ResolvedTenant
		}
		return false, ErrTenantIsolation
	}

	decision.Granted = true
	return true, nil
}
