package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pairconnect/api/internal/application"
	"pairconnect/api/models"
)

var _ application.Store = (*MemStore)(nil)

type storedProject struct {
	project models.Project
	seq     int
}

type storedRequest struct {
	request models.ProjectRequest
	seq     int
}

// MemStore is an in-memory application.Store. Errors registered with FailOn
// are returned by the named method instead of touching state.
type MemStore struct {
	mu sync.Mutex

	ids   *IDGenerator
	clock *Clock
	seq   int

	users        map[string]models.User
	projects     map[string]storedProject
	requests     map[string]storedRequest
	sessions     map[string]models.Session
	participants map[string][]string
	interested   map[string][]string
	bookmarks    map[string][]string

	failures map[string]error
}

// NewMemStore returns an empty store using ids and clock for generated
// fields. Nil arguments get fresh defaults.
func NewMemStore(ids *IDGenerator, clock *Clock) *MemStore {
	if ids == nil {
		ids = NewIDGenerator("id")
	}
	if clock == nil {
		clock = NewClock(time.Time{})
	}
	return &MemStore{
		ids:          ids,
		clock:        clock,
		users:        map[string]models.User{},
		projects:     map[string]storedProject{},
		requests:     map[string]storedRequest{},
		sessions:     map[string]models.Session{},
		participants: map[string][]string{},
		interested:   map[string][]string{},
		bookmarks:    map[string][]string{},
		failures:     map[string]error{},
	}
}

// FailOn makes method return err until cleared with a nil err.
func (m *MemStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

func (m *MemStore) fail(method string) error {
	return m.failures[method]
}

// RequestStatus returns the stored status of the request of userID on
// projectID, or "" when there is none.
func (m *MemStore) RequestStatus(projectID, userID string) models.RequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.request.ProjectID == projectID && r.request.UserID == userID {
			return r.request.Status
		}
	}
	return ""
}

// --- users ---

func (m *MemStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return copyUser(u), nil
}

func (m *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (m *MemStore) InsertUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertUser"); err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = m.ids.Next()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.clock.Now()
	}
	if user.Languages == nil {
		user.Languages = []string{}
	}
	user.Bookmarks = nil
	m.users[user.ID] = user
	return copyUser(user), nil
}

func (m *MemStore) UpdateUser(_ context.Context, id string, update models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Avatar != nil {
		u.Avatar = update.Avatar
	}
	if update.Bio != nil {
		u.Bio = update.Bio
	}
	if update.Stack != nil {
		u.Stack = *update.Stack
	}
	if update.Level != nil {
		u.Level = *update.Level
	}
	if update.Languages != nil {
		u.Languages = append([]string{}, update.Languages...)
	}
	if update.Contacts != nil {
		u.Contacts = *update.Contacts
	}
	if update.ProfilePublic != nil {
		u.ProfilePublic = *update.ProfilePublic
	}
	if update.PrivacySettings != nil {
		u.PrivacySettings = update.PrivacySettings.Resolve()
	}
	m.users[id] = u
	return copyUser(u), nil
}

func (m *MemStore) DeleteUserByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			delete(m.users, id)
		}
	}
	return nil
}

func (m *MemStore) SearchUsers(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	query := strings.ToLower(filter.Query)
	var out []models.User
	for _, u := range m.users {
		if !u.ProfilePublic {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Username), query) {
			continue
		}
		if filter.Stack != "" && u.Stack != filter.Stack {
			continue
		}
		if filter.Level != "" && u.Level != filter.Level {
			continue
		}
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// --- projects ---

func (m *MemStore) InsertProject(_ context.Context, project models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertProject"); err != nil {
		return nil, err
	}
	project.ID = m.ids.Next()
	project.CreatedAt = m.clock.Now()
	project.UpdatedAt = project.CreatedAt
	project.Interested = nil
	m.seq++
	m.projects[project.ID] = storedProject{project: project, seq: m.seq}
	return copyProject(project), nil
}

func (m *MemStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return copyProject(p.project), nil
}

func (m *MemStore) ListProjects(_ context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []storedProject
	for _, p := range m.projects {
		if filter.OwnerID != "" && p.project.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Stack != "" && p.project.Stack != filter.Stack {
			continue
		}
		if filter.Level != "" && p.project.Level != filter.Level {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	var out []models.Project
	for _, p := range matched {
		out = append(out, *copyProject(p.project))
	}
	return out, nil
}

func (m *MemStore) UpdateProject(_ context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.projects[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	p := stored.project
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Image != nil {
		p.Image = update.Image
	}
	if update.Stack != nil {
		p.Stack = *update.Stack
	}
	if update.Level != nil {
		p.Level = *update.Level
	}
	if update.Languages != nil {
		p.Languages = append([]string{}, update.Languages...)
	}
	p.UpdatedAt = m.clock.Now()
	stored.project = p
	m.projects[id] = stored
	return copyProject(p), nil
}

// DeleteProject removes the project and cascades to its requests, sessions
// and every row hanging off those sessions.
func (m *MemStore) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	for rid, r := range m.requests {
		if r.request.ProjectID == id {
			delete(m.requests, rid)
		}
	}
	for sid, s := range m.sessions {
		if s.ProjectID == id {
			m.deleteSessionLocked(sid)
		}
	}
	return nil
}

// --- requests ---

func (m *MemStore) GetRequest(_ context.Context, projectID, requestID string) (*models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok || r.request.ProjectID != projectID {
		return nil, models.ErrRecordNotFound
	}
	req := r.request
	return &req, nil
}

func (m *MemStore) GetRequestByUser(_ context.Context, projectID, userID string) (*models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.request.ProjectID == projectID && r.request.UserID == userID {
			req := r.request
			return &req, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (m *MemStore) InsertRequest(_ context.Context, request models.ProjectRequest) (*models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertRequest"); err != nil {
		return nil, err
	}
	request.ID = m.ids.Next()
	request.CreatedAt = m.clock.Now()
	request.UpdatedAt = request.CreatedAt
	m.seq++
	m.requests[request.ID] = storedRequest{request: request, seq: m.seq}
	return &request, nil
}

func (m *MemStore) DeleteRequest(_ context.Context, projectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.requests {
		if r.request.ProjectID == projectID && r.request.UserID == userID {
			delete(m.requests, id)
		}
	}
	return nil
}

func (m *MemStore) UpdateRequestStatus(_ context.Context, requestID string, status models.RequestStatus) (*models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	r.request.Status = status
	r.request.UpdatedAt = m.clock.Now()
	m.requests[requestID] = r
	req := r.request
	return &req, nil
}

func (m *MemStore) ListRequests(_ context.Context, projectID string) ([]models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []storedRequest
	for _, r := range m.requests {
		if r.request.ProjectID == projectID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	var out []models.ProjectRequest
	for _, r := range matched {
		req := r.request
		if u, ok := m.users[req.UserID]; ok {
			req.User = &models.Requester{
				ID:       u.ID,
				Name:     u.Name,
				Username: u.Username,
				Email:    u.Email,
				Avatar:   u.Avatar,
				Stack:    u.Stack,
				Level:    u.Level,
			}
		}
		out = append(out, req)
	}
	return out, nil
}

func (m *MemStore) AcceptedUserIDs(_ context.Context, projectID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []storedRequest
	for _, r := range m.requests {
		if r.request.ProjectID == projectID && r.request.Status == models.RequestAccepted {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	var out []string
	for _, r := range matched {
		out = append(out, r.request.UserID)
	}
	return out, nil
}

// --- sessions ---

func (m *MemStore) InsertSession(_ context.Context, session models.Session) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertSession"); err != nil {
		return nil, err
	}
	session.ID = m.ids.Next()
	session.CreatedAt = m.clock.Now()
	session.Participants = nil
	session.Interested = nil
	m.sessions[session.ID] = session
	return copySession(session), nil
}

func (m *MemStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	return copySession(s), nil
}

func (m *MemStore) ListSessions(_ context.Context, filter models.SessionFilter) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if filter.ProjectID != "" && s.ProjectID != filter.ProjectID {
			continue
		}
		if filter.OwnerID != "" && s.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, *copySession(s))
	}
	sortSessions(out)
	return out, nil
}

func (m *MemStore) ListSessionsByID(_ context.Context, ids []string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, id := range ids {
		if s, ok := m.sessions[id]; ok {
			out = append(out, *copySession(s))
		}
	}
	sortSessions(out)
	return out, nil
}

func (m *MemStore) UpdateSession(_ context.Context, id string, update models.SessionUpdate) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	if update.Title != nil {
		s.Title = *update.Title
	}
	if update.Description != nil {
		s.Description = *update.Description
	}
	if update.Date != nil {
		s.Date = *update.Date
	}
	if update.Duration != nil {
		s.Duration = *update.Duration
	}
	if update.MaxParticipants != nil {
		s.MaxParticipants = *update.MaxParticipants
	}
	if update.Link != nil {
		s.Link = update.Link
	}
	m.sessions[id] = s
	return copySession(s), nil
}

func (m *MemStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteSessionLocked(id)
	return nil
}

func (m *MemStore) deleteSessionLocked(id string) {
	delete(m.sessions, id)
	delete(m.participants, id)
	delete(m.interested, id)
	for userID, ids := range m.bookmarks {
		m.bookmarks[userID] = without(ids, id)
	}
}

func (m *MemStore) SessionIDsForProject(_ context.Context, projectID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id, s := range m.sessions {
		if s.ProjectID == projectID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemStore) ParticipantIDs(_ context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.participants[sessionID]...), nil
}

func (m *MemStore) AddParticipant(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AddParticipant"); err != nil {
		return err
	}
	m.participants[sessionID] = with(m.participants[sessionID], userID)
	return nil
}

func (m *MemStore) UpsertParticipant(_ context.Context, userID string, sessionIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpsertParticipant"); err != nil {
		return err
	}
	for _, id := range sessionIDs {
		m.participants[id] = with(m.participants[id], userID)
	}
	return nil
}

func (m *MemStore) RemoveParticipant(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[sessionID] = without(m.participants[sessionID], userID)
	return nil
}

func (m *MemStore) InterestedIDs(_ context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.interested[sessionID]...), nil
}

func (m *MemStore) AddInterested(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interested[sessionID] = with(m.interested[sessionID], userID)
	return nil
}

func (m *MemStore) RemoveInterested(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interested[sessionID] = without(m.interested[sessionID], userID)
	return nil
}

// --- bookmarks ---

func (m *MemStore) BookmarkedSessionIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bookmarks[userID]...), nil
}

func (m *MemStore) AddBookmark(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmarks[userID] = with(m.bookmarks[userID], sessionID)
	return nil
}

func (m *MemStore) RemoveBookmark(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmarks[userID] = without(m.bookmarks[userID], sessionID)
	return nil
}

func with(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortSessions(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].Date.After(sessions[j].Date)
	})
}

func copyUser(u models.User) *models.User {
	u.Languages = append([]string{}, u.Languages...)
	return &u
}

func copyProject(p models.Project) *models.Project {
	p.Languages = append([]string{}, p.Languages...)
	return &p
}

func copySession(s models.Session) *models.Session {
	s.Participants = nil
	s.Interested = nil
	return &s
}
