package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"pairconnect/api/internal/application"
)

// GoTrueVerifier validates tokens by asking the auth server who they belong
// to. It is used when no JWT secret is configured.
type GoTrueVerifier struct {
	lookup func(token string) (*types.UserResponse, error)
}

// NewGoTrueVerifier returns a verifier calling GET /user with each token.
func NewGoTrueVerifier(client gotrue.Client) *GoTrueVerifier {
	return &GoTrueVerifier{lookup: func(token string) (*types.UserResponse, error) {
		return client.WithToken(token).GetUser()
	}}
}

func (v *GoTrueVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := v.lookup(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if resp == nil || resp.ID == uuid.Nil {
		return "", fmt.Errorf("%w: no user for token", ErrInvalidToken)
	}
	return resp.ID.String(), nil
}

// authAPI is the part of the GoTrue client the provider uses.
type authAPI interface {
	AdminCreateUser(req types.AdminCreateUserRequest) (*types.AdminCreateUserResponse, error)
	AdminGetUser(req types.AdminGetUserRequest) (*types.AdminGetUserResponse, error)
	AdminDeleteUser(req types.AdminDeleteUserRequest) error
	Token(req types.TokenRequest) (*types.TokenResponse, error)
}

var _ application.IdentityProvider = (*Provider)(nil)

// Provider implements application.IdentityProvider. Admin calls go through a
// client holding the service role key; password grants go through a client
// holding the anonymous key.
type Provider struct {
	admin  authAPI
	public authAPI
}

// NewProvider returns a provider over the given GoTrue clients.
func NewProvider(admin, public gotrue.Client) *Provider {
	return &Provider{admin: admin, public: public}
}

func (p *Provider) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (*application.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.admin.AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &password,
		EmailConfirm: true,
		UserMetadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth user: %w", err)
	}
	return authUser(resp.User), nil
}

func (p *Provider) GetUser(ctx context.Context, id string) (*application.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	resp, err := p.admin.AdminGetUser(types.AdminGetUserRequest{UserID: uid})
	if err != nil {
		return nil, fmt.Errorf("get auth user: %w", err)
	}
	return authUser(resp.User), nil
}

func (p *Provider) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", id, err)
	}
	if err := p.admin.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: uid}); err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

func (p *Provider) PasswordGrant(ctx context.Context, email, password string) (string, *application.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	resp, err := p.public.Token(types.TokenRequest{
		GrantType: "password",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("password grant: %w", err)
	}
	if resp.AccessToken == "" {
		return "", nil, errors.New("password grant: empty access token")
	}
	return resp.AccessToken, authUser(resp.User), nil
}

func authUser(u types.User) *application.AuthUser {
	out := &application.AuthUser{ID: u.ID.String(), Email: strings.ToLower(u.Email)}
	out.Name, _ = u.UserMetadata["name"].(string)
	out.Username, _ = u.UserMetadata["username"].(string)
	return out
}
