package authz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOwners resolves ownership from an in-memory table keyed by
// resource type and id.
type stubOwners struct {
	owners map[string]int64
	err    error
	calls  int
}

func ownerKey(resourceType string, id int64) string {
	return fmt.Sprintf("%s/%d", resourceType, id)
}

func (s *stubOwners) BelongsToTenant(_ context.Context, actor Identity, ref ResourceRef) (Ownership, error) {
	s.calls++
	if s.err != nil {
		return Ownership{}, s.err
	}
	resolved, ok := s.owners[ownerKey(ref.Type, ref.ID)]
	if !ok {
		return Ownership{}, nil
	}
	return Ownership{Allowed: resolved == actor.TenantID, ResolvedTenant: resolved}, nil
}

func testMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrixBuilder().
		Global(RoleSuperAdmin).
		Grant(RoleViewer, "clients", "view").
		Grant(RoleComplianceManager, "clients", "view", "edit").
		Grant(RoleComplianceManager, "filings", Wildcard).
		Inherit(RoleFirmAdmin, RoleComplianceManager).
		Grant(RoleFirmAdmin, "users", Wildcard).
		Build()
	require.NoError(t, err)
	return m
}

func TestHasPermissionMatrixOnly(t *testing.T) {
	sink := &MemorySink{}
	ev := NewEvaluator(testMatrix(t), &stubOwners{}, sink, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleViewer}

	ok, err := ev.HasPermission(context.Background(), actor, Permission{Module: "clients", Action: "view"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.HasPermission(context.Background(), actor, Permission{Module: "clients", Action: "edit"})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, ok)
	// The denial names only the module and action.
	assert.Contains(t, err.Error(), "clients.edit")

	decisions := sink.Decisions()
	require.Len(t, decisions, 2, "every call must record exactly one decision")
	assert.True(t, decisions[0].Granted)
	assert.False(t, decisions[1].Granted)
	assert.Equal(t, "matrix denied", decisions[1].Reason)
}

func TestHasPermissionResourceOwnership(t *testing.T) {
	owners := &stubOwners{owners: map[string]int64{
		ownerKey(ResourceClients, 10): 1,
		ownerKey(ResourceClients, 20): 2,
	}}
	sink := &MemorySink{}
	ev := NewEvaluator(testMatrix(t), owners, sink, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleComplianceManager}

	ok, err := ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 10}})
	require.NoError(t, err)
	assert.True(t, ok)

	// A resource in another tenant denies with the not-found taxonomy and
	// flags a security incident carrying the resolved owner.
	ok, err = ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 20}})
	require.ErrorIs(t, err, ErrTenantIsolation)
	assert.False(t, ok)

	incidents := sink.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, int64(2), incidents[0].ResolvedTenantID)
	assert.Equal(t, int64(1), incidents[0].TenantID)

	// A missing resource denies identically but is no incident.
	_, err = ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 999}})
	require.ErrorIs(t, err, ErrTenantIsolation)
	assert.Len(t, sink.Incidents(), 1)
}

func TestHasPermissionMatrixDeniesBeforeOwnership(t *testing.T) {
	owners := &stubOwners{owners: map[string]int64{ownerKey(ResourceClients, 10): 1}}
	ev := NewEvaluator(testMatrix(t), owners, &MemorySink{}, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleViewer}

	_, err := ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 10}})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, owners.calls, "ownership must not run when the matrix denies")
}

func TestHasPermissionSuperAdminCrossTenant(t *testing.T) {
	owners := &stubOwners{owners: map[string]int64{ownerKey(ResourceClients, 20): 2}}
	sink := &MemorySink{}
	ev := NewEvaluator(testMatrix(t), owners, sink, nil)
	actor := Identity{UserID: 1, TenantID: 1, Role: RoleSuperAdmin}

	ok, err := ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 20}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, owners.calls, "global role bypasses the ownership lookup")

	decisions := sink.Decisions()
	require.Len(t, decisions, 1, "the bypass is still audited")
	assert.True(t, decisions[0].Granted)
}

func TestHasPermissionWildcardInputRejected(t *testing.T) {
	sink := &MemorySink{}
	ev := NewEvaluator(testMatrix(t), &stubOwners{}, sink, nil)
	actor := Identity{UserID: 1, TenantID: 1, Role: RoleSuperAdmin}

	for _, perm := range []Permission{
		{Module: Wildcard, Action: "view"},
		{Module: "clients", Action: Wildcard},
	} {
		ok, err := ev.HasPermission(context.Background(), actor, perm)
		require.ErrorIs(t, err, ErrPermissionDenied)
		assert.False(t, ok, "wildcards are configuration, not input, even for the global role")
	}
	assert.Len(t, sink.Decisions(), 2)
}

func TestHasPermissionStorageUnavailable(t *testing.T) {
	owners := &stubOwners{err: fmt.Errorf("%w: dial tcp: connection refused", ErrStorageUnavailable)}
	ev := NewEvaluator(testMatrix(t), owners, &MemorySink{}, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleComplianceManager}

	ok, err := ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 10}})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, ok)
}

func TestHasPermissionOwnershipErrorFailsSecure(t *testing.T) {
	owners := &stubOwners{err: errors.New("scan: type mismatch")}
	sink := &MemorySink{}
	ev := NewEvaluator(testMatrix(t), owners, sink, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleComplianceManager}

	ok, err := ev.HasPermission(context.Background(), actor,
		Permission{Module: "clients", Action: "edit", Resource: &ResourceRef{Type: ResourceClients, ID: 10}})
	require.ErrorIs(t, err, ErrTenantIsolation)
	assert.False(t, ok)
	require.Len(t, sink.Decisions(), 1)
	assert.False(t, sink.Decisions()[0].Granted)
}

func TestHasPermissionDeterministic(t *testing.T) {
	owners := &stubOwners{owners: map[string]int64{ownerKey(ResourceFilings, 5): 1}}
	ev := NewEvaluator(testMatrix(t), owners, &MemorySink{}, nil)
	actor := Identity{UserID: 7, TenantID: 1, Role: RoleComplianceManager}
	perm := Permission{Module: "filings", Action: "submit", Resource: &ResourceRef{Type: ResourceFilings, ID: 5}}

	for i := 0; i < 25; i++ {
		ok, err := ev.HasPermission(context.Background(), actor, perm)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestHasPermissionUserMutationSelfOrAdmin(t *testing.T) {
	m, err := NewMatrixBuilder().
		Global(RoleSuperAdmin).
		Grant(RoleViewer, "users", "view").
		Grant(RoleClientPortalUser, "users", "edit").
		Grant(RoleFirmAdmin, "users", Wildcard).
		Build()
	require.NoError(t, err)

	owners := &stubOwners{owners: map[string]int64{
		ownerKey(ResourceUsers, 7): 1,
		ownerKey(ResourceUsers, 8): 1,
	}}
	sink := &MemorySink{}
	ev := NewEvaluator(m, owners, sink, nil)

	// A portal user may edit their own row.
	portal := Identity{UserID: 7, TenantID: 1, Role: RoleClientPortalUser}
	ok, err := ev.HasPermission(context.Background(), portal,
		Permission{Module: "users", Action: "edit", Resource: &ResourceRef{Type: ResourceUsers, ID: 7}})
	require.NoError(t, err)
	assert.True(t, ok)

	// The same grant does not extend to a colleague's row; the denial
	// lands before any ownership lookup.
	lookupsBefore := owners.calls
	ok, err = ev.HasPermission(context.Background(), portal,
		Permission{Module: "users", Action: "edit", Resource: &ResourceRef{Type: ResourceUsers, ID: 8}})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, ok)
	assert.Equal(t, lookupsBefore, owners.calls)

	decisions := sink.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, "user mutation limited to self", decisions[1].Reason)

	// An administrative role with users.manage may edit colleagues.
	admin := Identity{UserID: 2, TenantID: 1, Role: RoleFirmAdmin}
	ok, err = ev.HasPermission(context.Background(), admin,
		Permission{Module: "users", Action: "edit", Resource: &ResourceRef{Type: ResourceUsers, ID: 8}})
	require.NoError(t, err)
	assert.True(t, ok)

	// Reads of same-tenant colleagues stay open to any role holding view.
	viewer := Identity{UserID: 9, TenantID: 1, Role: RoleViewer}
	ok, err = ev.HasPermission(context.Background(), viewer,
		Permission{Module: "users", Action: "view", Resource: &ResourceRef{Type: ResourceUsers, ID: 8}})
	require.NoError(t, err)
	assert.True(t, ok)
}
