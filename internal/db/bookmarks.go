package db

import (
	"context"

	postgrest "github.com/supabase-community/postgrest-go"
)

type bookmarkRow struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func (s *Store) BookmarkedSessionIDs(ctx context.Context, userID string) ([]string, error) {
	q, err := s.from(ctx, bookmarksTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("user_id,session_id", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true})

	var rows []bookmarkRow
	if err := execute(bookmarksTable, "select", query, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.SessionID)
	}
	return ids, nil
}

func (s *Store) AddBookmark(ctx context.Context, userID, sessionID string) error {
	q, err := s.from(ctx, bookmarksTable)
	if err != nil {
		return err
	}
	row := bookmarkRow{UserID: userID, SessionID: sessionID}
	return execute(bookmarksTable, "upsert", q.Insert(row, true, "user_id,session_id", "minimal", ""), nil)
}

func (s *Store) RemoveBookmark(ctx context.Context, userID, sessionID string) error {
	q, err := s.from(ctx, bookmarksTable)
	if err != nil {
		return err
	}
	return execute(bookmarksTable, "delete", q.Delete("minimal", "").Eq("user_id", userID).Eq("session_id", sessionID), nil)
}
