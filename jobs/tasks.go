package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeNotifyDigest is the cron task that mails unread-notification
	// digests to staff.
	TaskTypeNotifyDigest = "notify:digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewNotifyDigestTask constructs the scheduled digest task.
func NewNotifyDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeNotifyDigest, nil)
}

// Mailer sends outbound email for job handlers.
type Mailer struct {
	Addr string
	From string
}

// HandleSendEmail returns the handler for TaskTypeSendEmail tasks.
func (m Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if m.Addr == "" {
		return fmt.Errorf("mailer: smtp address not configured")
	}
	msg := []byte("From: " + m.From + "\r\nTo: " + payload.To + "\r\nSubject: " + payload.Subject + "\r\n\r\n" + payload.Body + "\r\n")
	return smtp.SendMail(m.Addr, nil, m.From, []string{payload.To}, msg)
}
