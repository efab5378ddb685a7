package filings

import "time"

// Filing is a regulatory submission prepared by a firm for one of its
// clients. The row carries its own tenant column even though it also
// references a client, so isolation never depends on the join.
type Filing struct {
	ID              int64      `json:"id"`
	ClientID        int64      `json:"client_id"`
	Kind            string     `json:"kind"`
	Period          string     `json:"period"`
	Status          string     `json:"status"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedBy       int64      `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Filing lifecycle states. A filing starts as a draft, is submitted once,
// and is then either accepted or rejected by the authority.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
)

// Filing kinds accepted by the intake validators.
const (
	KindAnnualReturn        = "annual_return"
	KindVATReturn           = "vat_return"
	KindFinancialStatements = "financial_statements"
	KindPayrollSummary      = "payroll_summary"
)
