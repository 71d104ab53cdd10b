package notifications

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medira-his/medira/jobs"
)

// Digest mails each principal a summary of their unread notifications. It is
// driven by the notify:digest cron task in the worker.
type Digest struct {
	db     *pgxpool.Pool
	emails EmailEnqueuer
	logger *slog.Logger
}

func NewDigest(db *pgxpool.Pool, emails EmailEnqueuer, logger *slog.Logger) *Digest {
	return &Digest{db: db, emails: emails, logger: logger}
}

// Handle satisfies asynq.HandlerFunc for the digest task.
func (d *Digest) Handle(ctx context.Context, _ *asynq.Task) error {
	rows, err := d.db.Query(ctx, `
		SELECT u.email, COUNT(*)
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE n.read_at IS NULL AND u.is_active
		GROUP BY u.email`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		var unread int
		if err := rows.Scan(&email, &unread); err != nil {
			return err
		}
		payload := jobs.SendEmailPayload{
			To:      email,
			Subject: "You have " + strconv.Itoa(unread) + " unread notifications",
			Body:    "Sign in to the Medira dashboard to review them.",
		}
		if _, err := d.emails.EnqueueSendEmail(ctx, payload); err != nil {
			d.logger.Warn("enqueue digest email", slog.Any("error", err), slog.String("to", email))
		}
	}
	return rows.Err()
}
