package payroll

// SalaryForm creates or replaces a salary record. Net is computed server
// side; tax handling lives outside this system.
type SalaryForm struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	Month          string `json:"month" validate:"required,datetime=2006-01"`
	BaseCents      int64  `json:"base_cents" validate:"required,gt=0"`
	BonusCents     int64  `json:"bonus_cents" validate:"gte=0"`
	DeductionCents int64  `json:"deduction_cents" validate:"gte=0"`
}

// ListFilters narrows the branch payroll listing.
type ListFilters struct {
	Page  int
	Limit int
	Month string
}
