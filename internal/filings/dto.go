package filings

import "time"

type CreateFilingRequest struct {
	ClientID int64      `json:"client_id" validate:"required,gt=0"`
	Kind     string     `json:"kind" validate:"required,oneof=annual_return vat_return financial_statements payroll_summary"`
	Period   string     `json:"period" validate:"required,max=20"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

type UpdateFilingRequest struct {
	Period  *string    `json:"period,omitempty" validate:"omitempty,max=20"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type RejectFilingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ListFilingsRequest struct {
	ClientID *int64  `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=draft submitted accepted rejected"`
	Limit    int     `json:"limit" validate:"gte=0,lte=200"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
