package payroll

import "time"

// Salary is a monthly salary record. Amounts are in cents; the API never
// deals in floats.
type Salary struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	BranchID       int64      `json:"branch_id"`
	Month          string     `json:"month"`
	BaseCents      int64      `json:"base_cents"`
	BonusCents     int64      `json:"bonus_cents"`
	DeductionCents int64      `json:"deduction_cents"`
	NetCents       int64      `json:"net_cents"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MonthlySummary aggregates a branch's payroll for one month.
type MonthlySummary struct {
	BranchID   int64  `json:"branch_id"`
	Month      string `json:"month"`
	Records    int    `json:"records"`
	TotalCents int64  `json:"total_cents"`
	PaidCents  int64  `json:"paid_cents"`
}
