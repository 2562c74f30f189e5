package testfixtures

import (
	"context"
	"fmt"

	"pairconnect/api/models"
)

// UserOption customises a seeded profile.
type UserOption func(*models.User)

// Private marks the seeded profile as not public.
func Private() UserOption {
	return func(u *models.User) { u.ProfilePublic = false }
}

// WithPrivacy sets the seeded profile's privacy settings.
func WithPrivacy(settings models.PrivacySettings) UserOption {
	return func(u *models.User) { u.PrivacySettings = settings }
}

// SeedUser stores a public profile with default privacy settings under id.
func SeedUser(t interface{ Fatalf(string, ...interface{}) }, store *MemStore, id string, opts ...UserOption) models.User {
	bio := "bio of " + id
	user := models.User{
		ID:              id,
		Username:        id,
		Email:           fmt.Sprintf("%s@example.com", id),
		Name:            "User " + id,
		Bio:             &bio,
		Stack:           models.StackBackend,
		Level:           models.LevelMid,
		Languages:       []string{"go"},
		Contacts:        models.Contacts{Email: fmt.Sprintf("%s@example.com", id), Github: id},
		ProfilePublic:   true,
		PrivacySettings: models.DefaultPrivacySettings(),
	}
	for _, opt := range opts {
		opt(&user)
	}
	stored, err := store.InsertUser(context.Background(), user)
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return *stored
}
