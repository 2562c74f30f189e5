package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/apperr"
	"pairconnect/api/internal/testfixtures"
	"pairconnect/api/models"
)

func TestSessionCreate_DefaultsAndOwnerParticipation(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	p := h.project(t, "alice")

	s, err := h.sessions.Create(h.ctx, "alice", application.SessionInput{
		ProjectID: p.ID,
		Title:     "  Refactor night  ",
		Date:      h.clock.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Refactor night", s.Title)
	assert.Equal(t, models.DefaultSessionDuration, s.Duration)
	assert.Equal(t, models.DefaultSessionMaxParticipants, s.MaxParticipants)
	assert.Equal(t, "alice", s.OwnerID)
	assert.Equal(t, []string{"alice"}, s.Participants)
	assert.Equal(t, []string{}, s.Interested)
}

func TestSessionCreate_Rejections(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")

	_, err := h.sessions.Create(h.ctx, "bob", application.SessionInput{ProjectID: p.ID, Title: "x", Date: h.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = h.sessions.Create(h.ctx, "alice", application.SessionInput{ProjectID: "missing", Title: "x", Date: h.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = h.sessions.Create(h.ctx, "alice", application.SessionInput{ProjectID: p.ID, Date: h.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = h.sessions.Create(h.ctx, "alice", application.SessionInput{ProjectID: p.ID, Title: "x"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = h.sessions.Create(h.ctx, "", application.SessionInput{ProjectID: p.ID, Title: "x", Date: h.clock.Now()})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSessionRead_LinkVisibility(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	testfixtures.SeedUser(t, h.store, "carol")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)
	require.NoError(t, h.sessions.Join(h.ctx, s.ID, "bob"))

	tests := []struct {
		name    string
		viewer  string
		visible bool
	}{
		{"anonymous", "", false},
		{"stranger", "carol", false},
		{"owner", "alice", true},
		{"participant", "bob", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.sessions.Get(h.ctx, s.ID, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.visible, got.Link != nil)

			list, err := h.sessions.List(h.ctx, models.SessionFilter{ProjectID: p.ID}, tt.viewer)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, tt.visible, list[0].Link != nil)
		})
	}
}

func TestSessionList_RedactsPerEntry(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")
	joined := h.session(t, "alice", p.ID, 4)
	h.clock.Advance(time.Hour)
	other := h.session(t, "alice", p.ID, 4)
	require.NoError(t, h.sessions.Join(h.ctx, joined.ID, "bob"))

	list, err := h.sessions.List(h.ctx, models.SessionFilter{}, "bob")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID, "latest date first")
	assert.Nil(t, list[0].Link)
	assert.Equal(t, joined.ID, list[1].ID)
	assert.NotNil(t, list[1].Link)
}

func TestSessionGet_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.Get(h.ctx, "missing", "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSessionJoin(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	testfixtures.SeedUser(t, h.store, "carol")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 2)

	interested, err := h.sessions.ToggleInterest(h.ctx, s.ID, "bob")
	require.NoError(t, err)
	assert.True(t, interested)

	require.NoError(t, h.sessions.Join(h.ctx, s.ID, "bob"))
	got, err := h.sessions.Get(h.ctx, s.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.Participants)
	assert.Empty(t, got.Interested, "joining clears interest")

	err = h.sessions.Join(h.ctx, s.ID, "bob")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "already a participant")

	err = h.sessions.Join(h.ctx, s.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "owner is always a participant")

	err = h.sessions.Join(h.ctx, s.ID, "carol")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "session is full")
	got, err = h.sessions.Get(h.ctx, s.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, got.Participants, 2)

	err = h.sessions.Join(h.ctx, "missing", "carol")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = h.sessions.Join(h.ctx, s.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSessionLeave(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)

	err := h.sessions.Leave(h.ctx, s.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, h.sessions.Join(h.ctx, s.ID, "bob"))
	require.NoError(t, h.sessions.Leave(h.ctx, s.ID, "bob"))
	got, err := h.sessions.Get(h.ctx, s.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got.Participants)
	assert.Nil(t, got.Link)

	// leaving without being a participant is not an error
	require.NoError(t, h.sessions.Leave(h.ctx, s.ID, "bob"))

	err = h.sessions.Leave(h.ctx, "missing", "bob")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSessionToggleInterest(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)

	on, err := h.sessions.ToggleInterest(h.ctx, s.ID, "bob")
	require.NoError(t, err)
	assert.True(t, on)
	off, err := h.sessions.ToggleInterest(h.ctx, s.ID, "bob")
	require.NoError(t, err)
	assert.False(t, off)

	got, err := h.sessions.Get(h.ctx, s.ID, "")
	require.NoError(t, err)
	assert.Empty(t, got.Interested)

	_, err = h.sessions.ToggleInterest(h.ctx, s.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestSessionUpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)

	title := "Renamed"
	updated, err := h.sessions.Update(h.ctx, s.ID, "alice", models.SessionUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.NotNil(t, updated.Link)

	_, err = h.sessions.Update(h.ctx, s.ID, "bob", models.SessionUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	zero := 0
	_, err = h.sessions.Update(h.ctx, s.ID, "alice", models.SessionUpdate{MaxParticipants: &zero})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = h.sessions.Update(h.ctx, "missing", "alice", models.SessionUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.True(t, apperr.Is(h.sessions.Delete(h.ctx, s.ID, "bob"), apperr.KindForbidden))
	assert.True(t, apperr.Is(h.sessions.Delete(h.ctx, "missing", "alice"), apperr.KindNotFound))
	require.NoError(t, h.sessions.Delete(h.ctx, s.ID, "alice"))
	_, err = h.sessions.Get(h.ctx, s.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSessionUpdate_CapacityBelowParticipants(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	testfixtures.SeedUser(t, h.store, "carol")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)
	require.NoError(t, h.sessions.Join(h.ctx, s.ID, "bob"))
	require.NoError(t, h.sessions.Join(h.ctx, s.ID, "carol"))

	one := 1
	_, err := h.sessions.Update(h.ctx, s.ID, "alice", models.SessionUpdate{MaxParticipants: &one})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	got, err := h.sessions.Get(h.ctx, s.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, got.MaxParticipants)
	assert.Len(t, got.Participants, 3)

	three := 3
	updated, err := h.sessions.Update(h.ctx, s.ID, "alice", models.SessionUpdate{MaxParticipants: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxParticipants)
}

func TestBookmarks(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")
	p := h.project(t, "alice")
	s := h.session(t, "alice", p.ID, 4)

	ids, on, err := h.sessions.ToggleBookmark(h.ctx, "bob", s.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []string{s.ID}, ids)

	sessions, err := h.sessions.Bookmarks(h.ctx, "bob")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].Link, "bookmarks do not grant link access")

	ids, on, err = h.sessions.ToggleBookmark(h.ctx, "bob", s.ID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []string{}, ids)

	sessions, err = h.sessions.Bookmarks(h.ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []models.Session{}, sessions)

	_, _, err = h.sessions.ToggleBookmark(h.ctx, "bob", "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	_, _, err = h.sessions.ToggleBookmark(h.ctx, "bob", "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
