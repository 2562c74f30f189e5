package db

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/models"
)

type sessionRow struct {
	ID              string     `json:"id,omitempty"`
	ProjectID       string     `json:"project_id"`
	OwnerID         string     `json:"owner_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Date            time.Time  `json:"date"`
	Duration        int        `json:"duration"`
	MaxParticipants int        `json:"max_participants"`
	Link            *string    `json:"link"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func (r sessionRow) toModel() models.Session {
	s := models.Session{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		OwnerID:         r.OwnerID,
		Title:           r.Title,
		Description:     r.Description,
		Date:            r.Date,
		Duration:        r.Duration,
		MaxParticipants: r.MaxParticipants,
		Link:            r.Link,
	}
	if r.CreatedAt != nil {
		s.CreatedAt = *r.CreatedAt
	}
	return s
}

func sessionRows(rows []sessionRow) []models.Session {
	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toModel())
	}
	return sessions
}

// membershipRow is a row of session_participants or session_interested.
type membershipRow struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (s *Store) InsertSession(ctx context.Context, session models.Session) (*models.Session, error) {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	row := sessionRow{
		ProjectID:       session.ProjectID,
		OwnerID:         session.OwnerID,
		Title:           session.Title,
		Description:     session.Description,
		Date:            session.Date,
		Duration:        session.Duration,
		MaxParticipants: session.MaxParticipants,
		Link:            session.Link,
	}

	var rows []sessionRow
	if err := execute(sessionsTable, "insert", q.Insert(row, false, "", "representation", ""), &rows); err != nil {
		return nil, err
	}
	inserted, err := first(rows)
	if err != nil {
		return nil, err
	}
	out := inserted.toModel()
	return &out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	var rows []sessionRow
	if err := execute(sessionsTable, "select", q.Select("*", "", false).Eq("id", id).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

func (s *Store) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("*", "", false).Order("date", &postgrest.OrderOpts{Ascending: false})
	if filter.ProjectID != "" {
		query = query.Eq("project_id", filter.ProjectID)
	}
	if filter.OwnerID != "" {
		query = query.Eq("owner_id", filter.OwnerID)
	}

	var rows []sessionRow
	if err := execute(sessionsTable, "select", query, &rows); err != nil {
		return nil, err
	}
	return sessionRows(rows), nil
}

func (s *Store) ListSessionsByID(ctx context.Context, ids []string) ([]models.Session, error) {
	if len(ids) == 0 {
		return []models.Session{}, nil
	}
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("*", "", false).
		In("id", ids).
		Order("date", &postgrest.OrderOpts{Ascending: false})

	var rows []sessionRow
	if err := execute(sessionsTable, "select", query, &rows); err != nil {
		return nil, err
	}
	return sessionRows(rows), nil
}

func (s *Store) UpdateSession(ctx context.Context, id string, update models.SessionUpdate) (*models.Session, error) {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	values := map[string]interface{}{}
	if update.Title != nil {
		values["title"] = *update.Title
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.Date != nil {
		values["date"] = *update.Date
	}
	if update.Duration != nil {
		values["duration"] = *update.Duration
	}
	if update.MaxParticipants != nil {
		values["max_participants"] = *update.MaxParticipants
	}
	if update.Link != nil {
		values["link"] = *update.Link
	}
	if len(values) == 0 {
		return s.GetSession(ctx, id)
	}

	var rows []sessionRow
	if err := execute(sessionsTable, "update", q.Update(values, "representation", "").Eq("id", id), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return err
	}
	return execute(sessionsTable, "delete", q.Delete("minimal", "").Eq("id", id), nil)
}

func (s *Store) SessionIDsForProject(ctx context.Context, projectID string) ([]string, error) {
	q, err := s.from(ctx, sessionsTable)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := execute(sessionsTable, "select", q.Select("id", "", false).Eq("project_id", projectID), &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *Store) memberIDs(ctx context.Context, table, sessionID string) ([]string, error) {
	q, err := s.from(ctx, table)
	if err != nil {
		return nil, err
	}
	var rows []membershipRow
	if err := execute(table, "select", q.Select("session_id,user_id", "", false).Eq("session_id", sessionID), &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	return ids, nil
}

// addMembers upserts rows so that an existing (session_id, user_id) pair is
// not reported as a conflict.
func (s *Store) addMembers(ctx context.Context, table string, rows []membershipRow) error {
	if len(rows) == 0 {
		return nil
	}
	q, err := s.from(ctx, table)
	if err != nil {
		return err
	}
	return execute(table, "upsert", q.Insert(rows, true, "session_id,user_id", "minimal", ""), nil)
}

func (s *Store) removeMember(ctx context.Context, table, sessionID, userID string) error {
	q, err := s.from(ctx, table)
	if err != nil {
		return err
	}
	return execute(table, "delete", q.Delete("minimal", "").Eq("session_id", sessionID).Eq("user_id", userID), nil)
}

func (s *Store) ParticipantIDs(ctx context.Context, sessionID string) ([]string, error) {
	return s.memberIDs(ctx, participantsTable, sessionID)
}

func (s *Store) AddParticipant(ctx context.Context, sessionID, userID string) error {
	return s.addMembers(ctx, participantsTable, []membershipRow{{SessionID: sessionID, UserID: userID}})
}

func (s *Store) UpsertParticipant(ctx context.Context, userID string, sessionIDs []string) error {
	rows := make([]membershipRow, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		rows = append(rows, membershipRow{SessionID: id, UserID: userID})
	}
	return s.addMembers(ctx, participantsTable, rows)
}

func (s *Store) RemoveParticipant(ctx context.Context, sessionID, userID string) error {
	return s.removeMember(ctx, participantsTable, sessionID, userID)
}

func (s *Store) InterestedIDs(ctx context.Context, sessionID string) ([]string, error) {
	return s.memberIDs(ctx, interestedTable, sessionID)
}

func (s *Store) AddInterested(ctx context.Context, sessionID, userID string) error {
	return s.addMembers(ctx, interestedTable, []membershipRow{{SessionID: sessionID, UserID: userID}})
}

func (s *Store) RemoveInterested(ctx context.Context, sessionID, userID string) error {
	return s.removeMember(ctx, interestedTable, sessionID, userID)
}
