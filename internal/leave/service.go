package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
)

var ErrAlreadyDecided = errors.New("leave request already decided")

// Notifier delivers decision notifications; satisfied by
// notifications.Notifier.
type Notifier interface {
	Notify(ctx context.Context, userID int64, email, title, body string) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	validate *validator.Validate
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, validate: validator.New()}
}

// DayCount counts calendar days from start through end, inclusive. A
// single-day leave is one day, not zero.
func DayCount(start, end time.Time) (int, error) {
	start = start.Truncate(24 * time.Hour)
	end = end.Truncate(24 * time.Hour)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// Submit files a leave request for the calling principal.
func (s *Service) Submit(ctx context.Context, userID, branchID int64, form RequestForm) (Request, error) {
	if err := s.validate.Struct(form); err != nil {
		return Request{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	start, err := time.Parse("2006-01-02", form.StartDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: invalid start date", httpx.ErrValidation)
	}
	end, err := time.Parse("2006-01-02", form.EndDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: invalid end date", httpx.ErrValidation)
	}
	days, err := DayCount(start, end)
	if err != nil {
		return Request{}, err
	}
	return s.repo.Create(ctx, Request{
		UserID:    userID,
		BranchID:  branchID,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    form.Reason,
		Status:    StatusPending,
	})
}

func (s *Service) List(ctx context.Context, branchID int64, filters ListFilters) ([]Request, int, error) {
	return s.repo.List(ctx, branchID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Request, error) {
	req, _, err := s.repo.Get(ctx, id)
	return req, err
}

// Approve grants a pending request and notifies the requester.
func (s *Service) Approve(ctx context.Context, id, decidedBy int64) error {
	return s.decide(ctx, id, decidedBy, StatusApproved, "Leave approved")
}

// Reject declines a pending request and notifies the requester.
func (s *Service) Reject(ctx context.Context, id, decidedBy int64) error {
	return s.decide(ctx, id, decidedBy, StatusRejected, "Leave rejected")
}

func (s *Service) decide(ctx context.Context, id, decidedBy int64, status, title string) error {
	req, email, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Decide(ctx, id, status, decidedBy); err != nil {
		return err
	}
	if s.notifier != nil {
		body := fmt.Sprintf("Your leave from %s to %s (%d days) was %s.",
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.Days, status)
		// Notification failure never undoes the decision.
		_ = s.notifier.Notify(ctx, req.UserID, email, title, body)
	}
	return nil
}
