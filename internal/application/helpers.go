package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

func defaultLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}

func serviceLogger(logger logrus.FieldLogger, service, operation string) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"service":   service,
		"operation": operation,
	})
}

// lookupError maps a store lookup failure onto the error taxonomy.
func lookupError(err error, what string) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Internal(fmt.Sprintf("could not load %s", what), err)
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.Unauthorized("unauthorized")
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func validStack(s models.Stack) bool {
	switch s {
	case models.StackFrontend, models.StackBackend, models.StackFullstack:
		return true
	}
	return false
}

func validLevel(l models.Level) bool {
	switch l {
	case models.LevelJunior, models.LevelMid, models.LevelSenior:
		return true
	}
	return false
}

// newProfile builds the initial profile row for an auth account, in the same
// shape signup produces.
func newProfile(account AuthUser) models.User {
	localPart := account.Email
	if i := strings.Index(localPart, "@"); i > 0 {
		localPart = localPart[:i]
	}

	username := account.Username
	if username == "" {
		username = localPart
	}
	if username == "" {
		username = "user_" + shortID(account.ID)
	}
	name := account.Name
	if name == "" {
		name = localPart
	}
	if name == "" {
		name = username
	}

	return models.User{
		ID:              account.ID,
		Username:        username,
		Email:           account.Email,
		Name:            name,
		Stack:           models.StackFullstack,
		Level:           models.LevelJunior,
		Languages:       []string{},
		Contacts:        models.Contacts{Email: account.Email},
		ProfilePublic:   true,
		PrivacySettings: models.DefaultPrivacySettings(),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ensureProfile creates the profile row for userID from the identity provider
// when it does not exist yet.
func ensureProfile(ctx context.Context, users UserStore, identity IdentityProvider, userID string) error {
	_, err := users.GetUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrRecordNotFound) {
		return apperr.Internal("could not load user profile", err)
	}
	if identity == nil {
		return apperr.Internal("could not create user profile", errors.New("identity provider not configured"))
	}

	account, err := identity.GetUser(ctx, userID)
	if err != nil {
		return apperr.Internal("could not create user profile", err)
	}
	if _, err := users.InsertUser(ctx, newProfile(*account)); err != nil {
		return apperr.Internal("could not create user profile", err)
	}
	return nil
}

// withBookmarks attaches the bookmarked session ids of user.
func withBookmarks(ctx context.Context, bookmarks BookmarkStore, user *models.User) error {
	ids, err := bookmarks.BookmarkedSessionIDs(ctx, user.ID)
	if err != nil {
		return apperr.Internal("could not load bookmarks", err)
	}
	if ids == nil {
		ids = []string{}
	}
	user.Bookmarks = ids
	return nil
}
