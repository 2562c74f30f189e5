package db

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/models"
)

type recordedCall struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// postgrestServer answers every request with a fixed status and body and
// records what it was sent.
type postgrestServer struct {
	*httptest.Server
	mu     sync.Mutex
	calls  []recordedCall
	status int
	body   string
}

func newPostgrestServer(t *testing.T, status int, body string) *postgrestServer {
	t.Helper()
	s := &postgrestServer{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.calls = append(s.calls, recordedCall{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   raw,
		})
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *postgrestServer) only(t *testing.T) recordedCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.calls, 1)
	return s.calls[0]
}

func newTestStore(t *testing.T, srv *postgrestServer) *Store {
	t.Helper()
	store, err := New(srv.URL, "service-key")
	require.NoError(t, err)
	return store
}

func TestStore_SendsServiceCredentials(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[]`)
	store := newTestStore(t, srv)

	_, err := store.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	call := srv.only(t)
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/rest/v1/users", call.path)
	assert.Equal(t, "service-key", call.header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", call.header.Get("Authorization"))
	assert.Equal(t, "eq.u1", call.query.Get("id"))
	assert.Equal(t, "1", call.query.Get("limit"))
}

func TestStore_DeleteRequestFiltersOnProjectAndUser(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusNoContent, "")
	store := NewWithClient(postgrest.NewClient(srv.URL+"/rest/v1", "", nil))

	require.NoError(t, store.DeleteRequest(context.Background(), "p1", "u1"))

	call := srv.only(t)
	assert.Equal(t, http.MethodDelete, call.method)
	assert.Equal(t, "/rest/v1/project_requests", call.path)
	assert.Equal(t, "eq.p1", call.query.Get("project_id"))
	assert.Equal(t, "eq.u1", call.query.Get("user_id"))
	assert.Equal(t, "return=minimal", call.header.Get("Prefer"))
}

func TestStore_UpsertParticipantMergesDuplicates(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusCreated, "")
	store := newTestStore(t, srv)

	require.NoError(t, store.UpsertParticipant(context.Background(), "u1", []string{"s1", "s2"}))

	call := srv.only(t)
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/rest/v1/session_participants", call.path)
	assert.Equal(t, "session_id,user_id", call.query.Get("on_conflict"))
	assert.Equal(t, "resolution=merge-duplicates,return=minimal", call.header.Get("Prefer"))

	var rows []membershipRow
	require.NoError(t, json.Unmarshal(call.body, &rows))
	assert.Equal(t, []membershipRow{{SessionID: "s1", UserID: "u1"}, {SessionID: "s2", UserID: "u1"}}, rows)
}

func TestStore_UpsertParticipantWithoutSessions(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusCreated, "")
	store := newTestStore(t, srv)

	require.NoError(t, store.UpsertParticipant(context.Background(), "u1", nil))
	assert.Empty(t, srv.calls)
}

func TestStore_SearchUsersQuery(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[{"id":"u1","username":"ada_l","email":"ada@example.com","name":"Ada","stack":"Backend","level":"Senior","profile_public":true}]`)
	store := newTestStore(t, srv)

	users, err := store.SearchUsers(context.Background(), models.UserFilter{Query: " ada_l ", Stack: models.StackBackend})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada_l", users[0].Username)
	assert.True(t, users[0].ProfilePublic)

	call := srv.only(t)
	assert.Equal(t, "/rest/v1/users", call.path)
	assert.Equal(t, "not.is.false", call.query.Get("profile_public"))
	assert.Equal(t, `(name.ilike.*ada\_l*,username.ilike.*ada\_l*)`, call.query.Get("or"))
	assert.Equal(t, "eq.Backend", call.query.Get("stack"))
	assert.Empty(t, call.query.Get("level"))
	assert.Equal(t, "username.asc.nullslast", call.query.Get("order"))
	assert.Equal(t, "50", call.query.Get("limit"))
}

func TestStore_SearchUsersWithoutQuery(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[]`)
	store := newTestStore(t, srv)

	users, err := store.SearchUsers(context.Background(), models.UserFilter{Query: "(),"})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.False(t, srv.only(t).query.Has("or"))
}

func TestStore_ListSessionsNewestDateFirst(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[{"id":"s1","project_id":"p1","owner_id":"u1","title":"Evening","description":"","date":"2025-03-04T18:00:00Z","duration":60,"max_participants":4,"link":null}]`)
	store := newTestStore(t, srv)

	sessions, err := store.ListSessions(context.Background(), models.SessionFilter{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 4, sessions[0].MaxParticipants)
	assert.Nil(t, sessions[0].Link)

	call := srv.only(t)
	assert.Equal(t, "/rest/v1/sessions", call.path)
	assert.Equal(t, "date.desc.nullslast", call.query.Get("order"))
	assert.Equal(t, "eq.p1", call.query.Get("project_id"))
	assert.False(t, call.query.Has("owner_id"))
}

func TestStore_ListRequestsEmbedsRequester(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[{"id":"r1","project_id":"p1","user_id":"u2","status":"pending","user":{"id":"u2","name":"Bob","username":"bob"}}]`)
	store := newTestStore(t, srv)

	requests, err := store.ListRequests(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.RequestPending, requests[0].Status)
	require.NotNil(t, requests[0].User)
	assert.Equal(t, "bob", requests[0].User.Username)

	call := srv.only(t)
	assert.Equal(t, "/rest/v1/project_requests", call.path)
	assert.Equal(t, requesterColumns, call.query.Get("select"))
	assert.Equal(t, "eq.p1", call.query.Get("project_id"))
	assert.Equal(t, "created_at.desc.nullslast", call.query.Get("order"))
}

func TestStore_ErrorResponse(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
	store := newTestStore(t, srv)

	err := store.AddInterested(context.Background(), "s1", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "23505")
	assert.Contains(t, err.Error(), "session_interested")
}

func TestStore_CanceledContextSkipsRequest(t *testing.T) {
	srv := newPostgrestServer(t, http.StatusOK, `[]`)
	store := newTestStore(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.ListSessions(ctx, models.SessionFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, srv.calls)
}
