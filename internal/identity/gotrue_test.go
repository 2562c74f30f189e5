package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
)

type fakeAuthAPI struct {
	created  types.AdminCreateUserRequest
	deleted  uuid.UUID
	user     types.User
	grantErr error
}

func (f *fakeAuthAPI) AdminCreateUser(req types.AdminCreateUserRequest) (*types.AdminCreateUserResponse, error) {
	f.created = req
	return &types.AdminCreateUserResponse{User: f.user}, nil
}

func (f *fakeAuthAPI) AdminGetUser(req types.AdminGetUserRequest) (*types.AdminGetUserResponse, error) {
	if req.UserID != f.user.ID {
		return nil, errors.New("user not found")
	}
	return &types.AdminGetUserResponse{User: f.user}, nil
}

func (f *fakeAuthAPI) AdminDeleteUser(req types.AdminDeleteUserRequest) error {
	f.deleted = req.UserID
	return nil
}

func (f *fakeAuthAPI) Token(req types.TokenRequest) (*types.TokenResponse, error) {
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access-" + req.Email
	resp.User = f.user
	return resp, nil
}

func testUser() types.User {
	u := types.User{}
	u.ID = uuid.MustParse("5f0c3a52-8d3e-4a4e-9d7e-2c1c3b8a9f10")
	u.Email = "Ada@Example.com"
	u.UserMetadata = map[string]interface{}{"name": "Ada", "username": "ada"}
	return u
}

func TestProvider(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuthAPI{user: testUser()}
	p := &Provider{admin: api, public: api}
	id := api.user.ID.String()

	created, err := p.CreateUser(ctx, "ada@example.com", "pw", map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "ada", created.Username)
	assert.True(t, api.created.EmailConfirm)
	require.NotNil(t, api.created.Password)
	assert.Equal(t, "pw", *api.created.Password)

	got, err := p.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = p.GetUser(ctx, "not-a-uuid")
	assert.Error(t, err)

	require.NoError(t, p.DeleteUser(ctx, id))
	assert.Equal(t, api.user.ID, api.deleted)

	token, account, err := p.PasswordGrant(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access-ada@example.com", token)
	assert.Equal(t, id, account.ID)

	api.grantErr = errors.New("invalid_grant")
	_, _, err = p.PasswordGrant(ctx, "ada@example.com", "bad")
	assert.Error(t, err)
}

func TestGoTrueVerifier(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	v := &GoTrueVerifier{lookup: func(token string) (*types.UserResponse, error) {
		if token != "good" {
			return nil, errors.New("401")
		}
		resp := &types.UserResponse{}
		resp.User = user
		return resp, nil
	}}

	sub, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), sub)

	_, err = v.Verify(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
