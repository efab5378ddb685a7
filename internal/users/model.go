package users

import "time"

// User is a member of a firm: staff or a client portal account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ListUsersRequest struct {
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=super_admin firm_admin compliance_manager client_portal_user viewer"`
	Active *bool   `json:"active,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=200"`
	Offset int     `json:"offset" validate:"gte=0"`
}
