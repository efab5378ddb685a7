package servicerequests

import "time"

// ServiceRequest is a question or task a client portal user raises with
// the firm, worked by firm staff until closed.
type ServiceRequest struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	AssignedTo *int64     `json:"assigned_to,omitempty"`
	OpenedBy   int64      `json:"opened_by"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Request lifecycle states.
const (
	StatusOpen     = "open"
	StatusAssigned = "assigned"
	StatusClosed   = "closed"
)

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type CreateRequest struct {
	Subject  string `json:"subject" validate:"required,max=200"`
	Body     string `json:"body" validate:"required,max=5000"`
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

type AssignRequest struct {
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

type ListRequests struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=open assigned closed"`
	Assignee *int64  `json:"assignee,omitempty" validate:"omitempty,gt=0"`
	Limit    int     `json:"limit" validate:"gte=0,lte=200"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
