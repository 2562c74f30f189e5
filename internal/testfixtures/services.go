package testfixtures

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"pairconnect/api/internal/application"
	"pairconnect/api/models"
)

// ErrInvalidCredentials is returned by FakeIdentity for a bad password grant.
var ErrInvalidCredentials = errors.New("invalid login credentials")

type fakeAccount struct {
	user     application.AuthUser
	password string
}

// FakeIdentity is an in-memory application.IdentityProvider. Access tokens
// have the form "token-<user id>".
type FakeIdentity struct {
	mu       sync.Mutex
	ids      *IDGenerator
	accounts map[string]fakeAccount

	CreateErr error
	GrantErr  error
	Deleted   []string
}

// NewFakeIdentity returns an empty identity provider.
func NewFakeIdentity(ids *IDGenerator) *FakeIdentity {
	if ids == nil {
		ids = NewIDGenerator("auth")
	}
	return &FakeIdentity{ids: ids, accounts: map[string]fakeAccount{}}
}

// AddAccount registers an existing account and returns it.
func (f *FakeIdentity) AddAccount(id, email, password, name, username string) application.AuthUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := application.AuthUser{ID: id, Email: email, Name: name, Username: username}
	f.accounts[id] = fakeAccount{user: u, password: password}
	return u
}

// HasAccount reports whether an account with id exists.
func (f *FakeIdentity) HasAccount(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accounts[id]
	return ok
}

func (f *FakeIdentity) CreateUser(_ context.Context, email, password string, metadata map[string]interface{}) (*application.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	for _, a := range f.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return nil, errors.New("a user with this email address has already been registered")
		}
	}
	u := application.AuthUser{ID: f.ids.Next(), Email: email}
	u.Name, _ = metadata["name"].(string)
	u.Username, _ = metadata["username"].(string)
	f.accounts[u.ID] = fakeAccount{user: u, password: password}
	return &u, nil
}

func (f *FakeIdentity) GetUser(_ context.Context, id string) (*application.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	u := a.user
	return &u, nil
}

func (f *FakeIdentity) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *FakeIdentity) PasswordGrant(_ context.Context, email, password string) (string, *application.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GrantErr != nil {
		return "", nil, f.GrantErr
	}
	for _, a := range f.accounts {
		if strings.EqualFold(a.user.Email, email) && a.password == password {
			u := a.user
			return "token-" + u.ID, &u, nil
		}
	}
	return "", nil, ErrInvalidCredentials
}

// Notification is a delivery captured by RecordingNotifier.
type Notification struct {
	Kind      string
	To        string
	ProjectID string
	Requester string
}

// RecordingNotifier captures notifications instead of sending them.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *RecordingNotifier) RequestCreated(_ context.Context, owner, requester models.User, project models.Project) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Kind: "request_created", To: owner.Email, ProjectID: project.ID, Requester: requester.ID})
}

func (n *RecordingNotifier) RequestAccepted(_ context.Context, requester models.User, project models.Project) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Kind: "request_accepted", To: requester.Email, ProjectID: project.ID, Requester: requester.ID})
}

// Sent returns a copy of the captured notifications.
func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// MemAvatars is an in-memory application.AvatarStorage.
type MemAvatars struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	UploadErr error
}

// NewMemAvatars returns an empty avatar bucket.
func NewMemAvatars() *MemAvatars {
	return &MemAvatars{objects: map[string][]byte{}, types: map[string]string{}}
}

func (a *MemAvatars) Upload(_ context.Context, path, contentType string, data io.Reader) error {
	if a.UploadErr != nil {
		return a.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[path] = buf.Bytes()
	a.types[path] = contentType
	return nil
}

func (a *MemAvatars) PublicURL(path string) string {
	return "https://storage.test/avatars/" + path
}

func (a *MemAvatars) Remove(_ context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, path)
	delete(a.types, path)
	return nil
}

// Paths lists the stored object paths.
func (a *MemAvatars) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for p := range a.objects {
		out = append(out, p)
	}
	return out
}
