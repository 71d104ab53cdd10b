package staff

import "time"

// Member is a staff principal joined with its profile row.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleCode  int       `json:"role_code"`
	RoleName  string    `json:"role_name"`
	BranchID  int64     `json:"branch_id"`
	Specialty string    `json:"specialty,omitempty"`
	LicenseNo string    `json:"license_no,omitempty"`
	Shift     string    `json:"shift,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
