package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
)

// Domain errors surfaced by booking and status transitions.
var (
	ErrSlotsFull     = errors.New("doctor has no free slots on that day")
	ErrBadTransition = errors.New("appointment is not in a bookable state")
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// DayWindow returns the UTC calendar-day bounds containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Book creates an appointment after checking the doctor's daily cap.
func (s *Service) Book(ctx context.Context, branchID int64, form BookForm) (Appointment, error) {
	if err := s.validate.Struct(form); err != nil {
		return Appointment{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	if form.ScheduledAt.Before(time.Now()) {
		return Appointment{}, fmt.Errorf("%w: scheduled_at is in the past", httpx.ErrValidation)
	}

	dayStart, dayEnd := DayWindow(form.ScheduledAt)
	booked, err := s.repo.CountForDay(ctx, form.DoctorID, dayStart, dayEnd)
	if err != nil {
		return Appointment{}, err
	}
	if booked >= MaxDailySlots {
		return Appointment{}, ErrSlotsFull
	}

	return s.repo.Book(ctx, Appointment{
		BranchID:    branchID,
		PatientID:   form.PatientID,
		DoctorID:    form.DoctorID,
		ScheduledAt: form.ScheduledAt.UTC(),
		Status:      StatusBooked,
		Reason:      form.Reason,
	})
}

func (s *Service) List(ctx context.Context, branchID int64, filters ListFilters) ([]Appointment, int, error) {
	return s.repo.List(ctx, branchID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusBooked, StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusBooked, StatusCompleted)
}

// DayLoad reports per-doctor booked counts for the given day.
func (s *Service) DayLoad(ctx context.Context, branchID int64, day time.Time) ([]DoctorLoad, error) {
	dayStart, dayEnd := DayWindow(day)
	return s.repo.DayLoad(ctx, branchID, dayStart, dayEnd)
}
