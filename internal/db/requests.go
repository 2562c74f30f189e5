package db

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/models"
)

// requesterColumns embeds the requester's public card through the
// project_requests.user_id foreign key.
const requesterColumns = "*,user:users(id,name,username,email,avatar,stack,level)"

type requestRow struct {
	ID        string               `json:"id,omitempty"`
	ProjectID string               `json:"project_id"`
	UserID    string               `json:"user_id"`
	Status    models.RequestStatus `json:"status"`
	Message   *string              `json:"message,omitempty"`
	User      *models.Requester    `json:"user,omitempty"`
	CreatedAt *time.Time           `json:"created_at,omitempty"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
}

func (r requestRow) toModel() models.ProjectRequest {
	req := models.ProjectRequest{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		UserID:    r.UserID,
		Status:    r.Status,
		Message:   r.Message,
		User:      r.User,
	}
	if r.CreatedAt != nil {
		req.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		req.UpdatedAt = *r.UpdatedAt
	}
	return req
}

func (s *Store) selectRequest(ctx context.Context, filters map[string]string) (*models.ProjectRequest, error) {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("*", "", false)
	for column, value := range filters {
		query = query.Eq(column, value)
	}

	var rows []requestRow
	if err := execute(requestsTable, "select", query.Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	req := row.toModel()
	return &req, nil
}

func (s *Store) GetRequest(ctx context.Context, projectID, requestID string) (*models.ProjectRequest, error) {
	return s.selectRequest(ctx, map[string]string{"id": requestID, "project_id": projectID})
}

func (s *Store) GetRequestByUser(ctx context.Context, projectID, userID string) (*models.ProjectRequest, error) {
	return s.selectRequest(ctx, map[string]string{"project_id": projectID, "user_id": userID})
}

func (s *Store) InsertRequest(ctx context.Context, request models.ProjectRequest) (*models.ProjectRequest, error) {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return nil, err
	}
	row := requestRow{
		ProjectID: request.ProjectID,
		UserID:    request.UserID,
		Status:    request.Status,
		Message:   request.Message,
	}

	var rows []requestRow
	if err := execute(requestsTable, "insert", q.Insert(row, false, "", "representation", ""), &rows); err != nil {
		return nil, err
	}
	inserted, err := first(rows)
	if err != nil {
		return nil, err
	}
	req := inserted.toModel()
	return &req, nil
}

func (s *Store) DeleteRequest(ctx context.Context, projectID, userID string) error {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return err
	}
	return execute(requestsTable, "delete", q.Delete("minimal", "").Eq("project_id", projectID).Eq("user_id", userID), nil)
}

func (s *Store) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.ProjectRequest, error) {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return nil, err
	}
	values := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}

	var rows []requestRow
	if err := execute(requestsTable, "update", q.Update(values, "representation", "").Eq("id", requestID), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	req := row.toModel()
	return &req, nil
}

func (s *Store) ListRequests(ctx context.Context, projectID string) ([]models.ProjectRequest, error) {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select(requesterColumns, "", false).
		Eq("project_id", projectID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	var rows []requestRow
	if err := execute(requestsTable, "select", query, &rows); err != nil {
		return nil, err
	}
	requests := make([]models.ProjectRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toModel())
	}
	return requests, nil
}

func (s *Store) AcceptedUserIDs(ctx context.Context, projectID string) ([]string, error) {
	q, err := s.from(ctx, requestsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("user_id", "", false).
		Eq("project_id", projectID).
		Eq("status", string(models.RequestAccepted)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true})

	var rows []struct {
		UserID string `json:"user_id"`
	}
	if err := execute(requestsTable, "select", query, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	return ids, nil
}
