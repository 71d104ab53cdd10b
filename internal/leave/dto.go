package leave

// RequestForm is the leave-request payload. Dates are calendar days.
type RequestForm struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

// ListFilters narrows the branch leave listing.
type ListFilters struct {
	Page   int
	Limit  int
	Status string
	UserID int64
}
