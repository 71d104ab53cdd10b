package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/medira-his/medira/jobs"
)

// EmailEnqueuer abstracts the asynq client so the notifier can be tested
// without Redis.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Notifier persists notifications and fans them out over email. Email
// delivery is best-effort; the notification row is the source of truth.
type Notifier struct {
	repo   Repository
	emails EmailEnqueuer
	logger *slog.Logger
}

func NewNotifier(repo Repository, emails EmailEnqueuer, logger *slog.Logger) *Notifier {
	return &Notifier{repo: repo, emails: emails, logger: logger}
}

// Notify stores a notification for the given principal and enqueues an email
// when an address is known. The email enqueue never fails the caller.
func (n *Notifier) Notify(ctx context.Context, userID int64, email, title, body string) error {
	if n == nil || n.repo == nil {
		return nil
	}
	if _, err := n.repo.Create(ctx, Notification{UserID: userID, Title: title, Body: body}); err != nil {
		return err
	}
	if n.emails == nil || email == "" {
		return nil
	}
	go func() {
		enqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := n.emails.EnqueueSendEmail(enqCtx, jobs.SendEmailPayload{To: email, Subject: title, Body: body})
		if err != nil && n.logger != nil {
			n.logger.Warn("enqueue notification email", slog.Any("error", err), slog.Int64("user_id", userID))
		}
	}()
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error) {
	return s.repo.List(ctx, userID, unreadOnly, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
