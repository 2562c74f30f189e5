package db

import (
	"context"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"pairconnect/api/models"
)

// userRow maps to the users table. profile_public and privacy_settings may be
// null on rows created before those columns existed.
type userRow struct {
	ID              string               `json:"id"`
	Username        string               `json:"username"`
	Email           string               `json:"email"`
	Name            string               `json:"name"`
	Avatar          *string              `json:"avatar"`
	Bio             *string              `json:"bio"`
	Stack           models.Stack         `json:"stack"`
	Level           models.Level         `json:"level"`
	Languages       []string             `json:"languages"`
	Contacts        *models.Contacts     `json:"contacts"`
	ProfilePublic   *bool                `json:"profile_public"`
	PrivacySettings *models.PrivacyFlags `json:"privacy_settings"`
	CreatedAt       *time.Time           `json:"created_at,omitempty"`
}

func (r userRow) toModel() models.User {
	u := models.User{
		ID:              r.ID,
		Username:        r.Username,
		Email:           r.Email,
		Name:            r.Name,
		Avatar:          r.Avatar,
		Bio:             r.Bio,
		Stack:           r.Stack,
		Level:           r.Level,
		Languages:       r.Languages,
		ProfilePublic:   r.ProfilePublic == nil || *r.ProfilePublic,
		PrivacySettings: r.PrivacySettings.Resolve(),
	}
	if u.Languages == nil {
		u.Languages = []string{}
	}
	if r.Contacts != nil {
		u.Contacts = *r.Contacts
	}
	if r.CreatedAt != nil {
		u.CreatedAt = *r.CreatedAt
	}
	return u
}

func userRowFrom(u models.User) userRow {
	public := u.ProfilePublic
	contacts := u.Contacts
	row := userRow{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Name:            u.Name,
		Avatar:          u.Avatar,
		Bio:             u.Bio,
		Stack:           u.Stack,
		Level:           u.Level,
		Languages:       u.Languages,
		Contacts:        &contacts,
		ProfilePublic:   &public,
		PrivacySettings: u.PrivacySettings.Flags(),
	}
	if row.Languages == nil {
		row.Languages = []string{}
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		row.CreatedAt = &created
	}
	return row
}

func userUpdateValues(update models.UserUpdate) map[string]interface{} {
	values := map[string]interface{}{}
	if update.Username != nil {
		values["username"] = *update.Username
	}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Avatar != nil {
		values["avatar"] = *update.Avatar
	}
	if update.Bio != nil {
		values["bio"] = *update.Bio
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
	if update.Contacts != nil {
		values["contacts"] = *update.Contacts
	}
	if update.ProfilePublic != nil {
		values["profile_public"] = *update.ProfilePublic
	}
	if update.PrivacySettings != nil {
		values["privacy_settings"] = update.PrivacySettings
	}
	return values
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	q, err := s.from(ctx, usersTable)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := execute(usersTable, "select", q.Select("*", "", false).Eq(column, value).Limit(1, ""), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *Store) InsertUser(ctx context.Context, user models.User) (*models.User, error) {
	q, err := s.from(ctx, usersTable)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := execute(usersTable, "insert", q.Insert(userRowFrom(user), false, "", "representation", ""), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	q, err := s.from(ctx, usersTable)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := execute(usersTable, "update", q.Update(userUpdateValues(update), "representation", "").Eq("id", id), &rows); err != nil {
		return nil, err
	}
	row, err := first(rows)
	if err != nil {
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

func (s *Store) DeleteUserByEmail(ctx context.Context, email string) error {
	q, err := s.from(ctx, usersTable)
	if err != nil {
		return err
	}
	return execute(usersTable, "delete", q.Delete("minimal", "").Eq("email", email), nil)
}

// SearchUsers returns public profiles whose name or username contains the
// query, case-insensitively.
func (s *Store) SearchUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	q, err := s.from(ctx, usersTable)
	if err != nil {
		return nil, err
	}
	query := q.Select("*", "", false).
		Not("profile_public", "is", "false").
		Order("username", &postgrest.OrderOpts{Ascending: true}).
		Limit(50, "")
	if term := searchTerm(filter.Query); term != "" {
		query = query.Or("name.ilike.*"+term+"*,username.ilike.*"+term+"*", "")
	}
	if filter.Stack != "" {
		query = query.Eq("stack", string(filter.Stack))
	}
	if filter.Level != "" {
		query = query.Eq("level", string(filter.Level))
	}

	var rows []userRow
	if err := execute(usersTable, "search", query, &rows); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

// searchTerm strips characters that carry meaning in a PostgREST logic tree
// and escapes the LIKE wildcards so the query matches literally.
func searchTerm(q string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(q) {
		switch r {
		case ',', '(', ')', '*', '.', ':', '"':
			continue
		case '\\', '%', '_':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
