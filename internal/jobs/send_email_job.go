package jobs

import (
	"context"
	"errors"
	"fmt"
)

// Email is a rendered message ready for delivery.
type Email struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers a single e-mail.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SendEmailJob defines a job delivering one notification e-mail.
type SendEmailJob struct {
	JobID  string
	Kind   string // notification kind, for logs
	Email  Email
	mailer Mailer
}

// NewSendEmailJob creates a new SendEmailJob. It returns an error when the
// message lacks a recipient, a subject or a body.
func NewSendEmailJob(jobID, kind string, email Email, mailer Mailer) (*SendEmailJob, error) {
	if mailer == nil {
		return nil, errors.New("send email job: nil mailer")
	}
	if email.To == "" || email.Subject == "" || email.HTML == "" {
		return nil, errors.New("send email job: missing required fields: to, subject, html")
	}
	return &SendEmailJob{JobID: jobID, Kind: kind, Email: email, mailer: mailer}, nil
}

// ID returns the unique identifier of the job.
func (j *SendEmailJob) ID() string {
	return j.JobID
}

// Execute sends the e-mail. Failures are returned to the worker for logging
// and are not retried.
func (j *SendEmailJob) Execute(ctx context.Context) error {
	if err := j.mailer.Send(ctx, j.Email); err != nil {
		return fmt.Errorf("send %s email to %s: %w", j.Kind, j.Email.To, err)
	}
	return nil
}
