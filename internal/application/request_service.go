package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// RequestAction is the owner's decision on a pending join request.
type RequestAction string

const (
	ActionAccept RequestAction = "accept"
	ActionReject RequestAction = "reject"
)

func (a RequestAction) status() (models.RequestStatus, bool) {
	switch a {
	case ActionAccept:
		return models.RequestAccepted, true
	case ActionReject:
		return models.RequestRejected, true
	}
	return "", false
}

// RequestService runs the project join request workflow: non-owners toggle a
// request, owners accept or reject it, and acceptance grants participation in
// every session of the project.
type RequestService struct {
	store    Store
	notifier Notifier
	logger   logrus.FieldLogger
}

// NewRequestService constructs a request service. A nil notifier drops
// notifications.
func NewRequestService(store Store, notifier Notifier, logger logrus.FieldLogger) *RequestService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RequestService{store: store, notifier: notifier, logger: defaultLogger(logger)}
}

// ExpressInterest toggles userID's join request on a project. Without an
// existing request a pending one is created and the owner is notified; with
// one in any status the request is withdrawn. The project is returned with its
// accepted-interest list.
func (s *RequestService) ExpressInterest(ctx context.Context, projectID, userID string) (*models.Project, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	logger := serviceLogger(s.logger, "RequestService", "ExpressInterest").WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    userID,
	})

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "project")
	}
	if project.OwnerID == userID {
		return nil, apperr.Forbidden("cannot request to join your own project")
	}

	_, err = s.store.GetRequestByUser(ctx, projectID, userID)
	switch {
	case err == nil:
		if err := s.store.DeleteRequest(ctx, projectID, userID); err != nil {
			return nil, apperr.Internal("could not withdraw request", err)
		}
		logger.Info("join request withdrawn")
	case errors.Is(err, models.ErrRecordNotFound):
		created, err := s.store.InsertRequest(ctx, models.ProjectRequest{
			ProjectID: projectID,
			UserID:    userID,
			Status:    models.RequestPending,
		})
		if err != nil {
			return nil, apperr.Internal("could not create request", err)
		}
		logger.WithField("request_id", created.ID).Info("join request created")
		s.notifyOwner(ctx, logger, *project, userID)
	default:
		return nil, apperr.Internal("could not load request", err)
	}

	accepted, err := s.store.AcceptedUserIDs(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("could not load project interest", err)
	}
	if accepted == nil {
		accepted = []string{}
	}
	project.Interested = accepted
	return project, nil
}

// ListRequests returns every request of a project, newest first, with the
// requester's profile embedded. Only the owner may list them.
func (s *RequestService) ListRequests(ctx context.Context, projectID, userID string) ([]models.ProjectRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequests(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal("could not load requests", err)
	}
	if requests == nil {
		requests = []models.ProjectRequest{}
	}
	return requests, nil
}

// ResolveRequest applies the owner's decision to a request. Accepting adds the
// requester as a participant of every existing session of the project and
// notifies them. Repeating the decision already taken is accepted and changes
// nothing beyond re-running the idempotent participant upsert; flipping a
// resolved request is rejected.
func (s *RequestService) ResolveRequest(ctx context.Context, projectID, requestID, userID string, action RequestAction) (*models.ProjectRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	logger := serviceLogger(s.logger, "RequestService", "ResolveRequest").WithFields(logrus.Fields{
		"project_id": projectID,
		"request_id": requestID,
		"action":     string(action),
	})

	project, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	request, err := s.store.GetRequest(ctx, projectID, requestID)
	if err != nil {
		return nil, lookupError(err, "request")
	}
	status, ok := action.status()
	if !ok {
		return nil, apperr.InvalidInput(`invalid action, must be "accept" or "reject"`)
	}

	transition := request.Status == models.RequestPending
	if !transition && request.Status != status {
		return nil, apperr.InvalidInput("request has already been " + string(request.Status))
	}

	updated := request
	if transition {
		updated, err = s.store.UpdateRequestStatus(ctx, requestID, status)
		if err != nil {
			return nil, apperr.Internal("could not update request", err)
		}
	}

	if status == models.RequestAccepted {
		sessionIDs, err := s.store.SessionIDsForProject(ctx, projectID)
		if err != nil {
			return nil, apperr.Internal("could not load project sessions", err)
		}
		if len(sessionIDs) > 0 {
			if err := s.store.UpsertParticipant(ctx, request.UserID, sessionIDs); err != nil {
				return nil, apperr.Internal("could not add participant to sessions", err)
			}
		}
		logger.WithField("sessions", len(sessionIDs)).Info("requester added to project sessions")
		if transition {
			s.notifyRequester(ctx, logger, *project, request.UserID)
		}
	}

	logger.WithField("status", string(updated.Status)).Info("join request resolved")
	return updated, nil
}

func (s *RequestService) ownedProject(ctx context.Context, projectID, userID string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "project")
	}
	if project.OwnerID != userID {
		return nil, apperr.Forbidden("not the project owner")
	}
	return project, nil
}

func (s *RequestService) notifyOwner(ctx context.Context, logger logrus.FieldLogger, project models.Project, requesterID string) {
	owner, err := s.store.GetUser(ctx, project.OwnerID)
	if err != nil {
		logger.WithError(err).Warn("skipping owner notification: owner profile unavailable")
		return
	}
	requester, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		logger.WithError(err).Warn("skipping owner notification: requester profile unavailable")
		return
	}
	if owner.Email == "" {
		return
	}
	s.notifier.RequestCreated(ctx, *owner, *requester, project)
}

func (s *RequestService) notifyRequester(ctx context.Context, logger logrus.FieldLogger, project models.Project, requesterID string) {
	requester, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		logger.WithError(err).Warn("skipping acceptance notification: requester profile unavailable")
		return
	}
	if requester.Email == "" {
		return
	}
	s.notifier.RequestAccepted(ctx, *requester, project)
}
