package appointments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medira-his/medira/internal/appointments"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
	_ "github.com/medira-his/medira/testing"
)

type stubApptRepo struct {
	bookedPerDoctor map[int64]int
	booked          []appointments.Appointment
	statuses        map[int64]string
}

func newStubApptRepo() *stubApptRepo {
	return &stubApptRepo{bookedPerDoctor: map[int64]int{}, statuses: map[int64]string{}}
}

func (s *stubApptRepo) Book(_ context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	a.ID = int64(len(s.booked) + 1)
	s.booked = append(s.booked, a)
	s.statuses[a.ID] = a.Status
	return a, nil
}

func (s *stubApptRepo) List(_ context.Context, _ int64, _ appointments.ListFilters) ([]appointments.Appointment, int, error) {
	return s.booked, len(s.booked), nil
}

func (s *stubApptRepo) Get(_ context.Context, id int64) (appointments.Appointment, error) {
	for _, a := range s.booked {
		if a.ID == id {
			return a, nil
		}
	}
	return appointments.Appointment{}, shared.ErrNotFound
}

func (s *stubApptRepo) SetStatus(_ context.Context, id int64, from, to string) error {
	current, ok := s.statuses[id]
	if !ok {
		return shared.ErrNotFound
	}
	if current != from {
		return appointments.ErrBadTransition
	}
	s.statuses[id] = to
	return nil
}

func (s *stubApptRepo) CountForDay(_ context.Context, doctorID int64, _, _ time.Time) (int, error) {
	return s.bookedPerDoctor[doctorID], nil
}

func (s *stubApptRepo) DayLoad(_ context.Context, _ int64, _, _ time.Time) ([]appointments.DoctorLoad, error) {
	return nil, nil
}

func futureSlot() time.Time {
	return time.Now().Add(48 * time.Hour)
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2026, 9, 7, 14, 30, 0, 0, time.UTC)
	start, end := appointments.DayWindow(at)
	require.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC), end)
}

func TestBook(t *testing.T) {
	repo := newStubApptRepo()
	svc := appointments.NewService(repo)

	appt, err := svc.Book(context.Background(), 5, appointments.BookForm{
		PatientID:   11,
		DoctorID:    3,
		ScheduledAt: futureSlot(),
	})
	require.NoError(t, err)
	require.Equal(t, appointments.StatusBooked, appt.Status)
	require.EqualValues(t, 5, appt.BranchID)
	require.Equal(t, time.UTC, appt.ScheduledAt.Location())
}

func TestBookRejectsFullDay(t *testing.T) {
	repo := newStubApptRepo()
	repo.bookedPerDoctor[3] = appointments.MaxDailySlots
	svc := appointments.NewService(repo)

	_, err := svc.Book(context.Background(), 5, appointments.BookForm{
		PatientID:   11,
		DoctorID:    3,
		ScheduledAt: futureSlot(),
	})
	require.ErrorIs(t, err, appointments.ErrSlotsFull)
	require.Empty(t, repo.booked)
}

func TestBookRejectsPastSlot(t *testing.T) {
	svc := appointments.NewService(newStubApptRepo())
	_, err := svc.Book(context.Background(), 5, appointments.BookForm{
		PatientID:   11,
		DoctorID:    3,
		ScheduledAt: time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCancelThenCompleteFails(t *testing.T) {
	repo := newStubApptRepo()
	svc := appointments.NewService(repo)

	appt, err := svc.Book(context.Background(), 5, appointments.BookForm{
		PatientID:   11,
		DoctorID:    3,
		ScheduledAt: futureSlot(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), appt.ID))
	require.ErrorIs(t, svc.Complete(context.Background(), appt.ID), appointments.ErrBadTransition)
}
