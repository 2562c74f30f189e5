// Package db implements the application store on top of the Supabase
// PostgREST API.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/internal/application"
	"pairconnect/api/models"
)

const (
	usersTable        = "users"
	projectsTable     = "projects"
	sessionsTable     = "sessions"
	requestsTable     = "project_requests"
	participantsTable = "session_participants"
	interestedTable   = "session_interested"
	bookmarksTable    = "user_bookmarks"
)

var _ application.Store = (*Store)(nil)

// Store reads and writes Pair Connect tables through PostgREST. It is safe for
// concurrent use.
type Store struct {
	client *postgrest.Client
}

// New creates a store authenticated with the service role key.
func New(supabaseURL, serviceKey string) (*Store, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase url and service key must be set")
	}

	client := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize postgrest client: %w", client.ClientError)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing PostgREST client.
func NewWithClient(client *postgrest.Client) *Store {
	return &Store{client: client}
}

func (s *Store) from(ctx context.Context, table string) (*postgrest.QueryBuilder, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("postgrest client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.client.From(table), nil
}

// execute runs a query and decodes the returned rows into out, which must be a
// pointer to a slice.
func execute(table, op string, query *postgrest.FilterBuilder, out interface{}) error {
	body, _, err := query.Execute()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// first returns the only element of rows or models.ErrRecordNotFound.
func first[T any](rows []T) (*T, error) {
	if len(rows) == 0 {
		return nil, models.ErrRecordNotFound
	}
	return &rows[0], nil
}
