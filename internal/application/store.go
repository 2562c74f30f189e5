package application

import (
	"context"
	"io"

	"pairconnect/api/models"
)

// UserStore captures profile persistence. Lookups return
// models.ErrRecordNotFound when nothing matches.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, user models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
	DeleteUserByEmail(ctx context.Context, email string) error
	SearchUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

// ProjectStore captures project persistence. Deleting a project cascades to its
// sessions and requests.
type ProjectStore interface {
	InsertProject(ctx context.Context, project models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// RequestStore captures project join request persistence. At most one row
// exists per (project, user).
type RequestStore interface {
	GetRequest(ctx context.Context, projectID, requestID string) (*models.ProjectRequest, error)
	GetRequestByUser(ctx context.Context, projectID, userID string) (*models.ProjectRequest, error)
	InsertRequest(ctx context.Context, request models.ProjectRequest) (*models.ProjectRequest, error)
	DeleteRequest(ctx context.Context, projectID, userID string) error
	UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.ProjectRequest, error)
	ListRequests(ctx context.Context, projectID string) ([]models.ProjectRequest, error)
	AcceptedUserIDs(ctx context.Context, projectID string) ([]string, error)
}

// SessionStore captures session persistence together with the participant and
// interested sets. Session rows are returned without the sets filled in.
type SessionStore interface {
	InsertSession(ctx context.Context, session models.Session) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	ListSessionsByID(ctx context.Context, ids []string) ([]models.Session, error)
	UpdateSession(ctx context.Context, id string, update models.SessionUpdate) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SessionIDsForProject(ctx context.Context, projectID string) ([]string, error)

	ParticipantIDs(ctx context.Context, sessionID string) ([]string, error)
	AddParticipant(ctx context.Context, sessionID, userID string) error
	// UpsertParticipant adds userID to every listed session, ignoring rows
	// that already exist.
	UpsertParticipant(ctx context.Context, userID string, sessionIDs []string) error
	RemoveParticipant(ctx context.Context, sessionID, userID string) error

	InterestedIDs(ctx context.Context, sessionID string) ([]string, error)
	AddInterested(ctx context.Context, sessionID, userID string) error
	RemoveInterested(ctx context.Context, sessionID, userID string) error
}

// BookmarkStore captures the per-user session bookmarks.
type BookmarkStore interface {
	BookmarkedSessionIDs(ctx context.Context, userID string) ([]string, error)
	AddBookmark(ctx context.Context, userID, sessionID string) error
	RemoveBookmark(ctx context.Context, userID, sessionID string) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	ProjectStore
	RequestStore
	SessionStore
	BookmarkStore
}

// AvatarStorage stores profile pictures in an object bucket.
type AvatarStorage interface {
	Upload(ctx context.Context, path, contentType string, data io.Reader) error
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

// AuthUser is an account as known by the identity provider.
type AuthUser struct {
	ID       string
	Email    string
	Name     string
	Username string
}

// IdentityProvider is the subset of the auth service the application drives.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (*AuthUser, error)
	GetUser(ctx context.Context, id string) (*AuthUser, error)
	DeleteUser(ctx context.Context, id string) error
	// PasswordGrant exchanges credentials for an access token.
	PasswordGrant(ctx context.Context, email, password string) (string, *AuthUser, error)
}

// Notifier delivers best-effort notifications. Implementations must not block
// on delivery.
type Notifier interface {
	RequestCreated(ctx context.Context, owner, requester models.User, project models.Project)
	RequestAccepted(ctx context.Context, requester models.User, project models.Project)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) RequestCreated(context.Context, models.User, models.User, models.Project) {}

func (NopNotifier) RequestAccepted(context.Context, models.User, models.Project) {}
