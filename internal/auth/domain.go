package auth

import "time"

// User represents an authenticated user account. Tenant and role are
// resolved at login and carried in the session; the authorization engine
// consumes them from there.
type User struct {
	ID           int64
	TenantID     int64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
