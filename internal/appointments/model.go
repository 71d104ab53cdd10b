package appointments

import "time"

// Appointment statuses. Transitions are booked -> cancelled | completed.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// MaxDailySlots caps how many bookings a doctor takes per calendar day.
const MaxDailySlots = 20

// Appointment is a booking row.
type Appointment struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branch_id"`
	PatientID   int64     `json:"patient_id"`
	DoctorID    int64     `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DoctorLoad is a per-doctor booked-slot count for one day.
type DoctorLoad struct {
	DoctorID int64 `json:"doctor_id"`
	Booked   int   `json:"booked"`
}
