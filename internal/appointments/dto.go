package appointments

import "time"

// BookForm is the booking payload.
type BookForm struct {
	PatientID   int64     `json:"patient_id" validate:"required,gt=0"`
	DoctorID    int64     `json:"doctor_id" validate:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason" validate:"max=500"`
}

// ListFilters narrows the branch appointment listing.
type ListFilters struct {
	Page     int
	Limit    int
	DoctorID int64
	Status   string
	Day      string
}
