package clients

import "time"

// Client is a client company managed by a firm (tenant).
type Client struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	RegistrationNo *string   `json:"registration_no,omitempty"`
	Jurisdiction   string    `json:"jurisdiction"`
	Email          *string   `json:"email,omitempty"`
	Status         string    `json:"status"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Client lifecycle states.
const (
	StatusActive   = "active"
	StatusDormant  = "dormant"
	StatusOffboard = "offboarded"
)
