// Package notify turns join-request events into e-mails delivered by the
// background worker pool.
package notify

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/jobs"
	"pairconnect/api/internal/worker"
	"pairconnect/api/models"
)

const (
	KindRequestCreated  = "request_created"
	KindRequestAccepted = "request_accepted"
)

// Submitter accepts jobs without blocking.
type Submitter interface {
	SubmitJob(job worker.Job) bool
}

var _ application.Notifier = (*Notifier)(nil)

// Notifier renders notification e-mails and submits them as jobs.
type Notifier struct {
	queue   Submitter
	mailer  jobs.Mailer
	from    string
	baseURL string
	logger  logrus.FieldLogger
}

// NewNotifier returns a notifier sending from the given address. Links in
// e-mails point below baseURL.
func NewNotifier(queue Submitter, mailer jobs.Mailer, from, baseURL string, logger logrus.FieldLogger) *Notifier {
	return &Notifier{
		queue:   queue,
		mailer:  mailer,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.WithField("component", "notifier"),
	}
}

// RequestCreated tells a project owner about a new join request.
func (n *Notifier) RequestCreated(_ context.Context, owner, requester models.User, project models.Project) {
	if owner.Email == "" {
		return
	}
	html, err := render(requestCreatedTmpl, map[string]interface{}{
		"Owner":     owner,
		"Requester": requester,
		"Project":   project,
		"Link":      n.baseURL + "/projects/" + project.ID + "/requests",
	})
	if err != nil {
		n.logger.WithError(err).Error("render request created email")
		return
	}
	n.submit(KindRequestCreated, jobs.Email{
		From:    n.from,
		To:      owner.Email,
		Subject: "New request for your project: " + project.Title,
		HTML:    html,
	})
}

// RequestAccepted tells a requester that the owner accepted them.
func (n *Notifier) RequestAccepted(_ context.Context, requester models.User, project models.Project) {
	if requester.Email == "" {
		return
	}
	html, err := render(requestAcceptedTmpl, map[string]interface{}{
		"Requester": requester,
		"Project":   project,
		"Link":      n.baseURL + "/projects/" + project.ID,
	})
	if err != nil {
		n.logger.WithError(err).Error("render request accepted email")
		return
	}
	n.submit(KindRequestAccepted, jobs.Email{
		From:    n.from,
		To:      requester.Email,
		Subject: "Request accepted: " + project.Title,
		HTML:    html,
	})
}

func (n *Notifier) submit(kind string, email jobs.Email) {
	job, err := jobs.NewSendEmailJob(uuid.NewString(), kind, email, n.mailer)
	if err != nil {
		n.logger.WithError(err).WithField("kind", kind).Warn("email job not created")
		return
	}
	if !n.queue.SubmitJob(job) {
		n.logger.WithFields(logrus.Fields{"kind": kind, "job_id": job.ID()}).Warn("email dropped")
	}
}
