package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes.
const MaxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// AvatarUpload describes a profile picture sent by the client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UserService serves profile reads, search, updates and avatar uploads.
type UserService struct {
	store    Store
	identity IdentityProvider
	avatars  AvatarStorage
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewUserService constructs a user service. avatars may be nil, in which case
// avatar uploads fail with an internal error.
func NewUserService(store Store, identity IdentityProvider, avatars AvatarStorage, logger logrus.FieldLogger) *UserService {
	return &UserService{
		store:    store,
		identity: identity,
		avatars:  avatars,
		logger:   defaultLogger(logger),
		now:      time.Now,
	}
}

// WithClock replaces the clock used to name uploaded avatars.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Get returns the profile id as viewerID is allowed to see it.
func (s *UserService) Get(ctx context.Context, id, viewerID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	if err := withBookmarks(ctx, s.store, user); err != nil {
		return nil, err
	}
	shaped, err := ShapeProfile(*user, viewerID)
	if err != nil {
		return nil, err
	}
	return &shaped, nil
}

// Search lists public profiles matching filter, shaped for an anonymous viewer.
func (s *UserService) Search(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Stack != "" && !validStack(filter.Stack) {
		return nil, apperr.InvalidInput("invalid stack")
	}
	if filter.Level != "" && !validLevel(filter.Level) {
		return nil, apperr.InvalidInput("invalid level")
	}
	filter.Query = strings.TrimSpace(filter.Query)

	users, err := s.store.SearchUsers(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("could not search users", err)
	}
	results := make([]models.User, 0, len(users))
	for _, u := range users {
		shaped, err := ShapeProfile(u, "")
		if err != nil {
			continue
		}
		results = append(results, shaped)
	}
	return results, nil
}

// Update applies update to the profile of id. Only the profile owner may
// update it; a missing profile row is created first. Privacy flags are merged
// over the current settings.
func (s *UserService) Update(ctx context.Context, id, callerID string, update models.UserUpdate) (*models.User, error) {
	if err := requireUser(callerID); err != nil {
		return nil, err
	}
	if id != callerID {
		return nil, apperr.Forbidden("cannot update another user's profile")
	}
	if update.Stack != nil && !validStack(*update.Stack) {
		return nil, apperr.InvalidInput("invalid stack")
	}
	if update.Level != nil && !validLevel(*update.Level) {
		return nil, apperr.InvalidInput("invalid level")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, apperr.InvalidInput("name cannot be empty")
	}

	if err := ensureProfile(ctx, s.store, s.identity, id); err != nil {
		return nil, err
	}
	current, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return nil, apperr.InvalidInput("username cannot be empty")
		}
		if err := s.checkUsername(ctx, username, id); err != nil {
			return nil, err
		}
		update.Username = &username
	}
	if update.PrivacySettings != nil {
		update.PrivacySettings = mergePrivacy(current.PrivacySettings, update.PrivacySettings)
	}
	if update.IsEmpty() {
		if err := withBookmarks(ctx, s.store, current); err != nil {
			return nil, err
		}
		return current, nil
	}

	user, err := s.store.UpdateUser(ctx, id, update)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	if err := withBookmarks(ctx, s.store, user); err != nil {
		return nil, err
	}
	serviceLogger(s.logger, "UserService", "Update").WithField("user_id", id).Info("profile updated")
	return user, nil
}

// UploadAvatar stores a new profile picture for id and saves its public URL on
// the profile. The stored object is removed again if the profile update fails.
func (s *UserService) UploadAvatar(ctx context.Context, id, callerID string, upload AvatarUpload) (*models.User, error) {
	if err := requireUser(callerID); err != nil {
		return nil, err
	}
	if id != callerID {
		return nil, apperr.Forbidden("cannot update another user's avatar")
	}
	if upload.Data == nil {
		return nil, apperr.InvalidInput("file is required")
	}
	contentType := strings.ToLower(upload.ContentType)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, apperr.InvalidInput("invalid file type, allowed: jpeg, png, webp, gif")
	}
	if upload.Size > MaxAvatarSize {
		return nil, apperr.InvalidInput("file too large, maximum size is 5MB")
	}
	if s.avatars == nil {
		return nil, apperr.Internal("could not upload avatar", errors.New("avatar storage not configured"))
	}

	if err := ensureProfile(ctx, s.store, s.identity, id); err != nil {
		return nil, err
	}

	logger := serviceLogger(s.logger, "UserService", "UploadAvatar").WithFields(logrus.Fields{
		"user_id":  id,
		"filename": upload.Filename,
	})
	path := fmt.Sprintf("avatars/%s/%d.%s", id, s.now().UnixMilli(), ext)
	if err := s.avatars.Upload(ctx, path, contentType, upload.Data); err != nil {
		return nil, apperr.Internal("could not upload avatar", err)
	}

	url := s.avatars.PublicURL(path)
	user, err := s.store.UpdateUser(ctx, id, models.UserUpdate{Avatar: &url})
	if err != nil {
		if rmErr := s.avatars.Remove(ctx, path); rmErr != nil {
			logger.WithError(rmErr).WithField("path", path).Warn("failed to remove orphaned avatar")
		}
		return nil, apperr.Internal("could not save avatar", err)
	}
	if err := withBookmarks(ctx, s.store, user); err != nil {
		return nil, err
	}
	logger.WithField("path", path).Info("avatar uploaded")
	return user, nil
}

func (s *UserService) checkUsername(ctx context.Context, username, ownerID string) error {
	existing, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		return nil
	case err != nil:
		return apperr.Internal("could not check username", err)
	case existing.ID != ownerID:
		return apperr.InvalidInput("username already taken")
	}
	return nil
}

// mergePrivacy overlays the flags present in update on current and returns the
// complete stored form.
func mergePrivacy(current models.PrivacySettings, update *models.PrivacyFlags) *models.PrivacyFlags {
	merged := current.Flags()
	if update.ShowEmail != nil {
		merged.ShowEmail = update.ShowEmail
	}
	if update.ShowContacts != nil {
		merged.ShowContacts = update.ShowContacts
	}
	if update.ShowProjects != nil {
		merged.ShowProjects = update.ShowProjects
	}
	if update.ShowSessions != nil {
		merged.ShowSessions = update.ShowSessions
	}
	if update.ShowBio != nil {
		merged.ShowBio = update.ShowBio
	}
	if update.ShowLanguages != nil {
		merged.ShowLanguages = update.ShowLanguages
	}
	if update.ShowStack != nil {
		merged.ShowStack = update.ShowStack
	}
	if update.ShowLevel != nil {
		merged.ShowLevel = update.ShowLevel
	}
	return merged
}
