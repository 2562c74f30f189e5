package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/testfixtures"
	"pairconnect/api/models"
)

type harness struct {
	ctx      context.Context
	store    *testfixtures.MemStore
	identity *testfixtures.FakeIdentity
	notifier *testfixtures.RecordingNotifier
	avatars  *testfixtures.MemAvatars
	clock    *testfixtures.Clock

	projects *application.ProjectService
	sessions *application.SessionService
	requests *application.RequestService
	users    *application.UserService
	auth     *application.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := testfixtures.NewClock(time.Time{})
	store := testfixtures.NewMemStore(testfixtures.NewIDGenerator("row"), clock)
	identity := testfixtures.NewFakeIdentity(testfixtures.NewIDGenerator("auth"))
	notifier := &testfixtures.RecordingNotifier{}
	avatars := testfixtures.NewMemAvatars()

	return &harness{
		ctx:      context.Background(),
		store:    store,
		identity: identity,
		notifier: notifier,
		avatars:  avatars,
		clock:    clock,
		projects: application.NewProjectService(store, identity, nil),
		sessions: application.NewSessionService(store, identity, nil),
		requests: application.NewRequestService(store, notifier, nil),
		users:    application.NewUserService(store, identity, avatars, nil).WithClock(clock.Now),
		auth:     application.NewAuthService(store, identity, nil),
	}
}

func (h *harness) project(t *testing.T, ownerID string) *models.Project {
	t.Helper()
	p, err := h.projects.Create(h.ctx, ownerID, application.ProjectInput{Title: "Pairing on a parser"})
	require.NoError(t, err)
	return p
}

func (h *harness) session(t *testing.T, ownerID, projectID string, maxParticipants int) *models.Session {
	t.Helper()
	link := "https://meet.example.com/" + projectID
	s, err := h.sessions.Create(h.ctx, ownerID, application.SessionInput{
		ProjectID:       projectID,
		Title:           "Evening session",
		Date:            h.clock.Now().Add(24 * time.Hour),
		MaxParticipants: maxParticipants,
		Link:            &link,
	})
	require.NoError(t, err)
	return s
}
