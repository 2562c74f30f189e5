package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// SignUpInput carries the fields of a new account.
type SignUpInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// AuthResult is returned by signup and login. NeedsLogin is set when the
// account was created but no token could be issued.
type AuthResult struct {
	User        models.User
	AccessToken string
	NeedsLogin  bool
}

// AuthService creates accounts and exchanges credentials for tokens.
type AuthService struct {
	store    Store
	identity IdentityProvider
	logger   logrus.FieldLogger
}

// NewAuthService constructs an auth service.
func NewAuthService(store Store, identity IdentityProvider, logger logrus.FieldLogger) *AuthService {
	return &AuthService{store: store, identity: identity, logger: defaultLogger(logger)}
}

// SignUp creates an auth account and its profile row, then signs the new user
// in. A stale profile row registered under the same e-mail is replaced while
// keeping its stack, level, languages and contacts. If the profile cannot be
// stored the auth account is deleted again.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, apperr.InvalidInput("name, username, email and password are required")
	}
	logger := serviceLogger(s.logger, "AuthService", "SignUp").WithField("username", input.Username)

	taken, err := s.store.GetUserByUsername(ctx, input.Username)
	switch {
	case err == nil && !strings.EqualFold(taken.Email, input.Email):
		return nil, apperr.InvalidInput("username already taken")
	case err != nil && !errors.Is(err, models.ErrRecordNotFound):
		return nil, apperr.Internal("could not check username", err)
	}

	stale, err := s.store.GetUserByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		stale = nil
	case err != nil:
		return nil, apperr.Internal("could not check e-mail", err)
	}

	account, err := s.identity.CreateUser(ctx, input.Email, input.Password, map[string]interface{}{
		"name":     input.Name,
		"username": input.Username,
	})
	if err != nil {
		logger.WithError(err).Warn("auth account creation failed")
		return nil, &apperr.Error{Kind: apperr.KindInvalidInput, Message: "could not create account", Err: err}
	}

	profile := newProfile(AuthUser{ID: account.ID, Email: input.Email, Name: input.Name, Username: input.Username})
	if stale != nil {
		profile.Stack = stale.Stack
		profile.Level = stale.Level
		profile.Languages = stale.Languages
		profile.Contacts = stale.Contacts
		if err := s.store.DeleteUserByEmail(ctx, input.Email); err != nil {
			s.rollback(ctx, logger, account.ID)
			return nil, apperr.Internal("could not replace stale profile", err)
		}
	}

	user, err := s.store.InsertUser(ctx, profile)
	if err != nil {
		s.rollback(ctx, logger, account.ID)
		return nil, apperr.Internal("could not create user profile", err)
	}
	user.Bookmarks = []string{}
	logger.WithField("user_id", user.ID).Info("account created")

	token, _, err := s.identity.PasswordGrant(ctx, input.Email, input.Password)
	if err != nil {
		logger.WithError(err).Warn("token grant after signup failed")
		return &AuthResult{User: *user, NeedsLogin: true}, nil
	}
	return &AuthResult{User: *user, AccessToken: token}, nil
}

// Login exchanges credentials for an access token. A profile row missing for
// an existing account is created from the account metadata.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.InvalidInput("email and password are required")
	}

	token, account, err := s.identity.PasswordGrant(ctx, email, password)
	if err != nil {
		serviceLogger(s.logger, "AuthService", "Login").WithError(err).Info("login rejected")
		return nil, apperr.Unauthorized("invalid email or password")
	}

	user, err := s.store.GetUser(ctx, account.ID)
	if errors.Is(err, models.ErrRecordNotFound) {
		user, err = s.store.InsertUser(ctx, newProfile(*account))
	}
	if err != nil {
		return nil, apperr.Internal("could not load user profile", err)
	}
	if err := withBookmarks(ctx, s.store, user); err != nil {
		return nil, err
	}
	return &AuthResult{User: *user, AccessToken: token}, nil
}

// Session returns the profile of the authenticated caller.
func (s *AuthService) Session(ctx context.Context, userID string) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	if err := withBookmarks(ctx, s.store, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) rollback(ctx context.Context, logger logrus.FieldLogger, accountID string) {
	if err := s.identity.DeleteUser(ctx, accountID); err != nil {
		logger.WithError(err).WithField("user_id", accountID).Error("failed to roll back auth account")
	}
}
