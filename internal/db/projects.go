package db

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/models"
)

type projectRow struct {
	ID          string       `json:"id,omitempty"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       *string      `json:"image"`
	Stack       models.Stack `json:"stack"`
	Level       models.Level `json:"level"`
	Languages   []string     `json:"languages"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

func (r projectRow) toModel() models.Project {
	p := models.Project{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Stack:       r.Stack,
		Level:       r.Level,
		Languages:   r.Languages,
	}
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		p.UpdatedAt = *r.UpdatedAt
	}
	return p
}

func projectRows(rows []projectRow) []models.Project {
	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toModel())
	}
	return projects
}

func (s *Store) InsertProject(ctx context.Context, project models.Project) (*models.Project, error) {
	q, err := s.from(ctx, projectsTable)
	if err != nil {
		return nil, err
	}
	row := projectRow{
		OwnerID:     project.OwnerID,
		Title:       project.Title,
		Description: project.Description,
		Image:       project.Image,
		Stack:       project.Stack,
		Level:       project.Level,
		Languages:   project.Languages,
	}
	if row.Languages == nil {
		row.Languages = []string{}
	}

	var rows []projectRow
	if err := execute(projectsTable, "insert", q.Insert(row, false, "", "representation", ""), &rows); err != nil {
		return nil, err
	}
	inserted, err := first(rows)
	if err != nil {
		return nil, err
	}
	p := inserted.toModel()
	return &p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	q, err := s.from(ctx, projectsTable)
	if err != nil {
		return nil, err
	}
	var rows []projectRow
	if err := execute(projectsTable, "select", q.Select("*", "", false).Eq("id", id).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	q, err := s.from(ctx, projectsTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("*", "", false).Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if filter.OwnerID != "" {
		query = query.Eq("owner_id", filter.OwnerID)
	}
	if filter.Stack != "" {
		query = query.Eq("stack", string(filter.Stack))
	}
	if filter.Level != "" {
		query = query.Eq("level", string(filter.Level))
	}

	var rows []projectRow
	if err := execute(projectsTable, "select", query, &rows); err != nil {
		return nil, err
	}
	return projectRows(rows), nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, update models.ProjectUpdate) (*models.Project, error) {
	q, err := s.from(ctx, projectsTable)
	if err != nil {
		return nil, err
	}
	values := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		values["title"] = *update.Title
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.Image != nil {
		values["image"] = *update.Image
	}
	if update.Stack != nil {
		values["stack"] = *update.Stack
	}
	if update.Level != nil {
		values["level"] = *update.Level
	}
	if update.Languages != nil {
		values["languages"] = update.Languages
	}

	var rows []projectRow
	if err := execute(projectsTable, "update", q.Update(values, "representation", "").Eq("id", id), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

// DeleteProject removes a project. Sessions and requests go with it through
// ON DELETE CASCADE.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	q, err := s.from(ctx, projectsTable)
	if err != nil {
		return err
	}
	return execute(projectsTable, "delete", q.Delete("minimal", "").Eq("id", id), nil)
}
