package auth

import "time"

// User represents an account row in users.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleCode     int
	RoleName     string
	BranchID     *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PatientLink is the patient row consulted on the phone login path.
type PatientLink struct {
	ID     int64
	UserID int64
	Phone  string
}
