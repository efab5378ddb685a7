package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/platform/httpx"
	"github.com/praxis-compliance/praxis/internal/shared"
)

// The guard chain builds an increasingly validated request context in four
// ordered stages. Each stage returns a distinct type so a handler cannot
// consume a later stage's context without the earlier stages having run.

// RoleChecked is an Identity whose role passed an allow-list check.
type RoleChecked struct {
	Identity
}

// PermissionChecked is a RoleChecked context with a matrix-granted
// module/action.
type PermissionChecked struct {
	RoleChecked
	Module string
	Action string
}

// ResourceChecked is a PermissionChecked context whose concrete resource
// passed tenant ownership verification.
type ResourceChecked struct {
	PermissionChecked
	Resource ResourceRef
}

// Guard runs the chain stages. Stages are idempotent; stages three and four
// additionally write to the audit trail through the evaluator.
type Guard struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(evaluator *Evaluator, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{Evaluator: evaluator, Logger: logger}
}

// RequireAuth is stage one: it resolves the session into an Identity.
// A missing identity fails with ErrUnauthenticated; an identity without a
// tenant or role assignment fails with ErrNoTenantAssignment.
func (g *Guard) RequireAuth(ctx context.Context) (Identity, error) {
	if id, ok := IdentityFromContext(ctx); ok {
		return id, nil
	}
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return Identity{}, ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, ErrUnauthenticated
	}
	tenantID, _ := strconv.ParseInt(sess.Tenant(), 10, 64)
	role := Role(sess.Role())
	if tenantID <= 0 || role == "" {
		return Identity{}, ErrNoTenantAssignment
	}
	// A session can outlive a matrix reconfiguration. A role the matrix no
	// longer defines is treated as no assignment at all.
	if g.Evaluator != nil && !g.Evaluator.matrix.Knows(role) {
		return Identity{}, ErrNoTenantAssignment
	}
	return Identity{UserID: userID, TenantID: tenantID, Role: role}, nil
}

// RequireRole is stage two: the identity's role must be in the allowed set.
func (g *Guard) RequireRole(actor Identity, allowed ...Role) (RoleChecked, error) {
	for _, role := range allowed {
		if actor.Role == role {
			return RoleChecked{Identity: actor}, nil
		}
	}
	return RoleChecked{}, ErrPermissionDenied
}

// RequirePermission is stage three: the matrix must grant (module, action)
// with no resource yet specified. The decision is audited.
func (g *Guard) RequirePermission(ctx context.Context, rc RoleChecked, module, action string) (PermissionChecked, error) {
	ok, err := g.Evaluator.HasPermission(ctx, rc.Identity, Permission{Module: module, Action: action})
	if !ok {
		return PermissionChecked{}, err
	}
	return PermissionChecked{RoleChecked: rc, Module: module, Action: action}, nil
}

// RequireTenantResource is stage four: the concrete resource must belong to
// the caller's tenant. The decision is audited; a cross-tenant miss is
// indistinguishable from a missing resource.
func (g *Guard) RequireTenantResource(ctx context.Context, pc PermissionChecked, resourceType string, resourceID int64) (ResourceChecked, error) {
	ref := ResourceRef{Type: resourceType, ID: resourceID}
	ok, err := g.Evaluator.HasPermission(ctx, pc.Identity, Permission{Module: pc.Module, Action: pc.Action, Resource: &ref})
	if !ok {
		return ResourceChecked{}, err
	}
	return ResourceChecked{PermissionChecked: pc, Resource: ref}, nil
}

type identityContextKey struct{}

// ContextWithIdentity stores the validated identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity placed by the Authenticate
// middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// Authenticate wires stage one as middleware, storing the Identity for the
// handlers below it.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := g.RequireAuth(r.Context())
		if err != nil {
			g.Respond(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), actor)))
	})
}

// RequireRoles wires stage two as middleware. It expects Authenticate above
// it in the chain.
func (g *Guard) RequireRoles(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := IdentityFromContext(r.Context())
			if !ok {
				g.Respond(w, ErrUnauthenticated)
				return
			}
			if _, err := g.RequireRole(actor, allowed...); err != nil {
				g.Respond(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require wires stage three as middleware for a module/action pair.
func (g *Guard) Require(module, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := IdentityFromContext(r.Context())
			if !ok {
				g.Respond(w, ErrUnauthenticated)
				return
			}
			if _, err := g.RequirePermission(r.Context(), RoleChecked{Identity: actor}, module, action); err != nil {
				g.Respond(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireResource wires stages three and four as middleware, reading the
// resource id from the named chi URL parameter.
func (g *Guard) RequireResource(module, action, resourceType, urlParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := IdentityFromContext(r.Context())
			if !ok {
				g.Respond(w, ErrUnauthenticated)
				return
			}
			resourceID, err := strconv.ParseInt(chi.URLParam(r, urlParam), 10, 64)
			if err != nil || resourceID <= 0 {
				g.Respond(w, ErrTenantIsolation)
				return
			}
			pc, err := g.RequirePermission(r.Context(), RoleChecked{Identity: actor}, module, action)
			if err != nil {
				g.Respond(w, err)
				return
			}
			if _, err := g.RequireTenantResource(r.Context(), pc, resourceType, resourceID); err != nil {
				g.Respond(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTTPStatus maps guard failures to their wire status: UNAUTHORIZED for a
// missing identity, FORBIDDEN for an insufficient role or permission, and
// NOT_FOUND for a failed ownership check.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNoTenantAssignment), errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrTenantIsolation):
		return http.StatusNotFound
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the problem response for a guard failure. Denial messages
// name the missing module.action only; a tenant isolation failure carries no
// detail at all.
func (g *Guard) Respond(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusForbidden:
		httpx.Problem(w, status, "Forbidden", err.Error())
	case http.StatusNotFound:
		httpx.Problem(w, status, "Not Found", "")
	case http.StatusUnauthorized:
		httpx.Problem(w, status, "Unauthorized", "")
	case http.StatusServiceUnavailable:
		httpx.Problem(w, status, "Service Unavailable", "")
	default:
		g.Logger.Error("guard failure", slog.Any("error", err))
		httpx.Problem(w, status, "Internal Error", "")
	}
}
