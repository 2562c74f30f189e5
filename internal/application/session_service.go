package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// SessionInput captures caller provided fields for a new session. Zero
// Duration and MaxParticipants fall back to the defaults.
type SessionInput struct {
	ProjectID       string
	Title           string
	Description     string
	Date            time.Time
	Duration        int
	MaxParticipants int
	Link            *string
}

// SessionService handles session CRUD, direct participation, session interest
// and bookmarks. Every session it returns has its connection link redacted for
// callers who are neither the owner nor a participant.
type SessionService struct {
	store    Store
	identity IdentityProvider
	logger   logrus.FieldLogger
}

// NewSessionService constructs a session service.
func NewSessionService(store Store, identity IdentityProvider, logger logrus.FieldLogger) *SessionService {
	return &SessionService{store: store, identity: identity, logger: defaultLogger(logger)}
}

// Create schedules a session under a project owned by userID. The owner is
// added as the first participant.
func (s *SessionService) Create(ctx context.Context, userID string, input SessionInput) (*models.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if input.ProjectID == "" {
		return nil, apperr.InvalidInput("projectId is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.InvalidInput("title is required")
	}
	if input.Date.IsZero() {
		return nil, apperr.InvalidInput("date is required")
	}
	if input.Duration == 0 {
		input.Duration = models.DefaultSessionDuration
	}
	if input.MaxParticipants == 0 {
		input.MaxParticipants = models.DefaultSessionMaxParticipants
	}
	if input.Duration < 0 || input.MaxParticipants < 1 {
		return nil, apperr.InvalidInput("duration and maxParticipants must be positive")
	}

	if err := ensureProfile(ctx, s.store, s.identity, userID); err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, input.ProjectID)
	if err != nil {
		return nil, lookupError(err, "project")
	}
	if project.OwnerID != userID {
		return nil, apperr.Forbidden("not the project owner")
	}

	session, err := s.store.InsertSession(ctx, models.Session{
		ProjectID:       project.ID,
		OwnerID:         userID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Date:            input.Date,
		Duration:        input.Duration,
		MaxParticipants: input.MaxParticipants,
		Link:            input.Link,
	})
	if err != nil {
		return nil, apperr.Internal("could not create session", err)
	}
	if err := s.store.AddParticipant(ctx, session.ID, userID); err != nil {
		return nil, apperr.Internal("could not add owner as participant", err)
	}
	session.Participants = []string{userID}
	session.Interested = []string{}

	serviceLogger(s.logger, "SessionService", "Create").
		WithFields(logrus.Fields{"session_id": session.ID, "project_id": project.ID}).
		Info("session created")
	return session, nil
}

// Get returns a single session as seen by viewerID.
func (s *SessionService) Get(ctx context.Context, id, viewerID string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, lookupError(err, "session")
	}
	if err := s.present(ctx, session, viewerID); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns sessions matching filter, latest date first, as seen by viewerID.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter, viewerID string) ([]models.Session, error) {
	sessions, err := s.store.ListSessions(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("could not load sessions", err)
	}
	return s.presentAll(ctx, sessions, viewerID)
}

// Update changes an owned session. maxParticipants cannot drop below the
// current participant count.
func (s *SessionService) Update(ctx context.Context, id, userID string, update models.SessionUpdate) (*models.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.ownedSession(ctx, id, userID); err != nil {
		return nil, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, apperr.InvalidInput("title cannot be empty")
	}
	if (update.Duration != nil && *update.Duration < 1) || (update.MaxParticipants != nil && *update.MaxParticipants < 1) {
		return nil, apperr.InvalidInput("duration and maxParticipants must be positive")
	}
	if update.MaxParticipants != nil {
		participants, err := s.store.ParticipantIDs(ctx, id)
		if err != nil {
			return nil, apperr.Internal("could not load participants", err)
		}
		if *update.MaxParticipants < len(participants) {
			return nil, apperr.InvalidInput("maxParticipants cannot be lower than the current number of participants")
		}
	}

	session, err := s.store.UpdateSession(ctx, id, update)
	if err != nil {
		return nil, lookupError(err, "session")
	}
	if err := s.present(ctx, session, userID); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes an owned session.
func (s *SessionService) Delete(ctx context.Context, id, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.ownedSession(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return apperr.Internal("could not delete session", err)
	}
	return nil
}

// Join adds userID to the participants of a session directly, bypassing the
// project request workflow. It fails when the caller already participates or
// the session is full. The capacity check is not atomic with the insert.
func (s *SessionService) Join(ctx context.Context, id, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return lookupError(err, "session")
	}
	participants, err := s.store.ParticipantIDs(ctx, id)
	if err != nil {
		return apperr.Internal("could not load participants", err)
	}

	if userID == session.OwnerID || contains(participants, userID) {
		return apperr.InvalidInput("already joined this session")
	}
	if len(participants) >= session.MaxParticipants {
		return apperr.InvalidInput("session is full")
	}

	if err := s.store.AddParticipant(ctx, id, userID); err != nil {
		return apperr.Internal("could not join session", err)
	}
	if err := s.store.RemoveInterested(ctx, id, userID); err != nil {
		return apperr.Internal("could not clear session interest", err)
	}

	serviceLogger(s.logger, "SessionService", "Join").
		WithFields(logrus.Fields{"session_id": id, "user_id": userID}).
		Info("participant joined session")
	return nil
}

// Leave removes userID from the participants of a session. The owner can
// never leave their own session.
func (s *SessionService) Leave(ctx context.Context, id, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return lookupError(err, "session")
	}
	if session.OwnerID == userID {
		return apperr.Forbidden("owner cannot leave session")
	}
	if err := s.store.RemoveParticipant(ctx, id, userID); err != nil {
		return apperr.Internal("could not leave session", err)
	}
	return nil
}

// ToggleInterest flips userID's interest in a session and reports the new
// state. Participants cannot mark interest.
func (s *SessionService) ToggleInterest(ctx context.Context, id, userID string) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	if _, err := s.store.GetSession(ctx, id); err != nil {
		return false, lookupError(err, "session")
	}
	participants, err := s.store.ParticipantIDs(ctx, id)
	if err != nil {
		return false, apperr.Internal("could not load participants", err)
	}
	if contains(participants, userID) {
		return false, apperr.InvalidInput("already participating")
	}

	interested, err := s.store.InterestedIDs(ctx, id)
	if err != nil {
		return false, apperr.Internal("could not load session interest", err)
	}
	if contains(interested, userID) {
		if err := s.store.RemoveInterested(ctx, id, userID); err != nil {
			return false, apperr.Internal("could not remove interest", err)
		}
		return false, nil
	}
	if err := s.store.AddInterested(ctx, id, userID); err != nil {
		return false, apperr.Internal("could not add interest", err)
	}
	return true, nil
}

// ToggleBookmark flips a bookmark of userID on a session and returns the
// updated bookmark ids together with the new state.
func (s *SessionService) ToggleBookmark(ctx context.Context, userID, sessionID string) ([]string, bool, error) {
	if err := requireUser(userID); err != nil {
		return nil, false, err
	}
	if sessionID == "" {
		return nil, false, apperr.InvalidInput("sessionId is required")
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, false, lookupError(err, "session")
	}

	bookmarks, err := s.store.BookmarkedSessionIDs(ctx, userID)
	if err != nil {
		return nil, false, apperr.Internal("could not load bookmarks", err)
	}
	bookmarked := !contains(bookmarks, sessionID)
	if bookmarked {
		err = s.store.AddBookmark(ctx, userID, sessionID)
	} else {
		err = s.store.RemoveBookmark(ctx, userID, sessionID)
	}
	if err != nil {
		return nil, false, apperr.Internal("could not update bookmark", err)
	}

	bookmarks, err = s.store.BookmarkedSessionIDs(ctx, userID)
	if err != nil {
		return nil, false, apperr.Internal("could not load bookmarks", err)
	}
	if bookmarks == nil {
		bookmarks = []string{}
	}
	return bookmarks, bookmarked, nil
}

// Bookmarks returns the sessions bookmarked by userID.
func (s *SessionService) Bookmarks(ctx context.Context, userID string) ([]models.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ids, err := s.store.BookmarkedSessionIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("could not load bookmarks", err)
	}
	if len(ids) == 0 {
		return []models.Session{}, nil
	}
	sessions, err := s.store.ListSessionsByID(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("could not load bookmarked sessions", err)
	}
	return s.presentAll(ctx, sessions, userID)
}

func (s *SessionService) ownedSession(ctx context.Context, id, userID string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, lookupError(err, "session")
	}
	if session.OwnerID != userID {
		return nil, apperr.Forbidden("not the session owner")
	}
	return session, nil
}

// present loads the participant and interested sets of session and applies
// link visibility for viewerID.
func (s *SessionService) present(ctx context.Context, session *models.Session, viewerID string) error {
	participants, err := s.store.ParticipantIDs(ctx, session.ID)
	if err != nil {
		return apperr.Internal("could not load participants", err)
	}
	interested, err := s.store.InterestedIDs(ctx, session.ID)
	if err != nil {
		return apperr.Internal("could not load session interest", err)
	}
	if participants == nil {
		participants = []string{}
	}
	if interested == nil {
		interested = []string{}
	}
	session.Participants = participants
	session.Interested = interested
	redactLink(session, viewerID)
	return nil
}

func (s *SessionService) presentAll(ctx context.Context, sessions []models.Session, viewerID string) ([]models.Session, error) {
	for i := range sessions {
		if err := s.present(ctx, &sessions[i], viewerID); err != nil {
			return nil, err
		}
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}
