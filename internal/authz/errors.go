package authz

import "errors"

var (
	// ErrUnauthenticated indicates no resolvable identity on the request.
	ErrUnauthenticated = errors.New("authz: authentication required")
	// ErrNoTenantAssignment indicates an identity without tenant or role.
	ErrNoTenantAssignment = errors.New("authz: identity has no tenant assignment")
	// ErrPermissionDenied indicates the matrix denied the module/action.
	ErrPermissionDenied = errors.New("authz: permission denied")
	// ErrTenantIsolation indicates a resource outside the caller's tenant or
	// a failed ownership lookup. It is always surfaced as "not found" so the
	// existence of another tenant's resource is never confirmed.
	ErrTenantIsolation = errors.New("authz: resource not found")
	// ErrStorageUnavailable indicates the ownership store is unreachable.
	ErrStorageUnavailable = errors.New("authz: storage unavailable")
	// ErrConfig indicates a malformed permission matrix. Fatal at startup.
	ErrConfig = errors.New("authz: invalid configuration")
)
