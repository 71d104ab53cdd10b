package leave

import "time"

// Leave request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a leave-request row.
type Request struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	BranchID  int64      `json:"branch_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Days      int        `json:"days"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
