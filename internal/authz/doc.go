// Package authz implements the authorization and tenant-isolation engine:
// the static role/permission matrix, the permission evaluator, resource
// ownership verification, the staged guard chain used by HTTP handlers, and
// the access audit trail.
//
// The engine is fail-secure: any ambiguous or erroring check resolves to a
// denial, and a cross-tenant lookup miss is indistinguishable from a missing
// resource.
package authz
