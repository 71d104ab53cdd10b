package patients

import "time"

// Patient joins the principal row with the patient detail row.
type Patient struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BranchID  int64     `json:"branch_id"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
