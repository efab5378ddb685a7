package authz

// Role is a named permission bundle assigned to a user within a tenant. The
// set of roles is fixed at configuration time; the engine never creates
// roles at runtime.
type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleFirmAdmin         Role = "firm_admin"
	RoleComplianceManager Role = "compliance_manager"
	RoleClientPortalUser  Role = "client_portal_user"
	RoleViewer            Role = "viewer"
)

// Identity is the caller's validated identity for the current request.
// Constructed once by the guard chain and never mutated afterwards.
type Identity struct {
	UserID   int64
	TenantID int64
	Role     Role
}

// ResourceRef identifies a business entity whose tenant ownership must be
// verified before access is granted.
type ResourceRef struct {
	Type string
	ID   int64
}

// Permission is a (module, action) pair, optionally refined by a concrete
// resource.
type Permission struct {
	Module   string
	Action   string
	Resource *ResourceRef
}
