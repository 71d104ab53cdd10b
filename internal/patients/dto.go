package patients

// RegisterForm is the self-signup payload. Phone is the patient login
// identifier and must be unique.
type RegisterForm struct {
	Name      string `json:"name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=6"`
	Password  string `json:"password" validate:"required,min=8"`
	BranchID  int64  `json:"branch_id" validate:"required,gt=0"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address   string `json:"address"`
}

// UpdateForm carries the fields a patient record may change after signup.
type UpdateForm struct {
	Name      string `json:"name" validate:"required,min=2"`
	Phone     string `json:"phone" validate:"required,min=6"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address   string `json:"address"`
}

// ListFilters narrows the branch-scoped patient listing.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}
