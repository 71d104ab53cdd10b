package staff

// CreateForm provisions a staff account. Patients never go through this
// path; they self-register.
type CreateForm struct {
	Name      string `json:"name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	RoleCode  int    `json:"role_code" validate:"required,oneof=2 3 4 6 7 8 9 10"`
	BranchID  int64  `json:"branch_id" validate:"required,gt=0"`
	Specialty string `json:"specialty"`
	LicenseNo string `json:"license_no"`
	Shift     string `json:"shift" validate:"omitempty,oneof=day night rotating"`
}

// UpdateForm changes profile fields; role and branch moves go through
// provisioning, not here.
type UpdateForm struct {
	Name      string `json:"name" validate:"required,min=2"`
	Specialty string `json:"specialty"`
	LicenseNo string `json:"license_no"`
	Shift     string `json:"shift" validate:"omitempty,oneof=day night rotating"`
}

// ListFilters narrows the branch staff listing.
type ListFilters struct {
	Page     int
	Limit    int
	RoleCode int
	Search   string
}
