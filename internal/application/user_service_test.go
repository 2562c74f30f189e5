package application_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/apperr"
	"pairconnect/api/internal/testfixtures"
	"pairconnect/api/models"
)

func TestUserGet(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "hidden", testfixtures.Private())
	require.NoError(t, h.store.AddBookmark(h.ctx, "alice", "s-1"))

	self, err := h.users.Get(h.ctx, "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", self.Email)
	assert.Equal(t, []string{"s-1"}, self.Bookmarks)

	other, err := h.users.Get(h.ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, other.Email)
	assert.Equal(t, []string{}, other.Bookmarks)

	_, err = h.users.Get(h.ctx, "hidden", "alice")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	own, err := h.users.Get(h.ctx, "hidden", "hidden")
	require.NoError(t, err)
	assert.False(t, own.ProfilePublic)

	_, err = h.users.Get(h.ctx, "missing", "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUserSearch(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "alfred", testfixtures.Private())
	testfixtures.SeedUser(t, h.store, "bob")

	found, err := h.users.Search(h.ctx, models.UserFilter{Query: "AL"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].ID)
	assert.Empty(t, found[0].Email)

	all, err := h.users.Search(h.ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = h.users.Search(h.ctx, models.UserFilter{Stack: "Mobile"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestUserUpdate(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	testfixtures.SeedUser(t, h.store, "bob")

	name := "Alice Liddell"
	show := true
	updated, err := h.users.Update(h.ctx, "alice", "alice", models.UserUpdate{
		Name:            &name,
		Languages:       []string{"rust"},
		PrivacySettings: &models.PrivacyFlags{ShowEmail: &show},
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, []string{"rust"}, updated.Languages)
	assert.True(t, updated.PrivacySettings.ShowEmail)
	assert.True(t, updated.PrivacySettings.ShowContacts, "unspecified flags keep their value")

	taken := "bob"
	_, err = h.users.Update(h.ctx, "alice", "alice", models.UserUpdate{Username: &taken})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = h.users.Update(h.ctx, "alice", "bob", models.UserUpdate{Name: &name})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	bad := models.Stack("Mobile")
	_, err = h.users.Update(h.ctx, "alice", "alice", models.UserUpdate{Stack: &bad})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestUserUpdate_CreatesMissingProfile(t *testing.T) {
	h := newHarness(t)
	h.identity.AddAccount("dave", "dave@example.com", "secret", "Dave", "dave_dev")

	bio := "new here"
	updated, err := h.users.Update(h.ctx, "dave", "dave", models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "dave_dev", updated.Username)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)
	assert.Equal(t, models.StackFullstack, updated.Stack)
	assert.True(t, updated.ProfilePublic)
}

func TestUploadAvatar(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")

	user, err := h.users.UploadAvatar(h.ctx, "alice", "alice", application.AvatarUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Data:        strings.NewReader("png!"),
	})
	require.NoError(t, err)

	path := "avatars/alice/" + strconv.FormatInt(testfixtures.ReferenceTime().UnixMilli(), 10) + ".png"
	assert.Equal(t, []string{path}, h.avatars.Paths())
	require.NotNil(t, user.Avatar)
	assert.Equal(t, "https://storage.test/avatars/"+path, *user.Avatar)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")

	tests := []struct {
		name   string
		caller string
		upload application.AvatarUpload
		kind   apperr.Kind
	}{
		{"another user", "bob", application.AvatarUpload{ContentType: "image/png", Data: strings.NewReader("x")}, apperr.KindForbidden},
		{"unsupported type", "alice", application.AvatarUpload{ContentType: "application/pdf", Data: strings.NewReader("x")}, apperr.KindInvalidInput},
		{"too large", "alice", application.AvatarUpload{ContentType: "image/jpeg", Size: application.MaxAvatarSize + 1, Data: strings.NewReader("x")}, apperr.KindInvalidInput},
		{"missing file", "alice", application.AvatarUpload{ContentType: "image/jpeg"}, apperr.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.users.UploadAvatar(h.ctx, "alice", tt.caller, tt.upload)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
	assert.Empty(t, h.avatars.Paths())
}

func TestUploadAvatar_RemovesObjectWhenProfileUpdateFails(t *testing.T) {
	h := newHarness(t)
	testfixtures.SeedUser(t, h.store, "alice")
	h.store.FailOn("UpdateUser", errors.New("db down"))

	_, err := h.users.UploadAvatar(h.ctx, "alice", "alice", application.AvatarUpload{
		ContentType: "image/webp",
		Size:        1,
		Data:        strings.NewReader("x"),
	})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Empty(t, h.avatars.Paths())
}
