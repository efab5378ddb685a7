package authz

import "testing"

// The checker is constructed with a nil pool: any path that reached
// storage would panic, so these tests also prove no lookup happened.

func TestSelfProfileNeedsNoLookup(t *testing.T) {
	checker := NewPGOwnershipChecker(nil, nil)
	actor := Identity{UserID: 7, TenantID: 3, Role: RoleClientPortalUser}

	own, err := checker.BelongsToTenant(t.Context(), actor, ResourceRef{Type: ResourceUsers, ID: 7})
	if err != nil {
		t.Fatalf("self profile check: %v", err)
	}
	if !own.Allowed {
		t.Fatal("expected own profile to be allowed without a lookup")
	}
	if own.ResolvedTenant != actor.TenantID {
		t.Fatalf("resolved tenant = %d, want %d", own.ResolvedTenant, actor.TenantID)
	}
}

func TestSelfProfileBypassIgnoresZeroIDs(t *testing.T) {
	checker := NewPGOwnershipChecker(nil, nil)

	// An anonymous zero user id must not match a zero resource id.
	own, err := checker.BelongsToTenant(t.Context(), Identity{UserID: 0, TenantID: 3}, ResourceRef{Type: ResourceUsers, ID: 0})
	if err != nil {
		t.Fatalf("zero id check: %v", err)
	}
	if own.Allowed {
		t.Fatal("zero ids must not resolve to allowed")
	}
}

func TestUnknownResourceTypeDenies(t *testing.T) {
	checker := NewPGOwnershipChecker(nil, nil)

	own, err := checker.BelongsToTenant(t.Context(), Identity{UserID: 7, TenantID: 3}, ResourceRef{Type: "ledgers", ID: 12})
	if err != nil {
		t.Fatalf("unknown type check: %v", err)
	}
	if own.Allowed {
		t.Fatal("unknown resource types must deny")
	}
}
