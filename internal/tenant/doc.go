// Package tenant forces every read and write against business entities to
// carry the caller's tenant identifier. Repositories receive a per-request
// Accessor instead of the raw pool, so application code cannot forget the
// tenant filter: the accessor injects it into every generated query and
// stamps it onto every created record.
package tenant
