package db

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"

	"pairconnect/api/internal/application"
)

// AvatarBucket is the storage bucket holding profile pictures.
const AvatarBucket = "avatars"

var _ application.AvatarStorage = (*Avatars)(nil)

// Avatars stores profile pictures in a public Supabase Storage bucket.
type Avatars struct {
	storage *storage_go.Client
	bucket  string
}

// NewAvatars returns avatar storage backed by the given client.
func NewAvatars(storage *storage_go.Client) *Avatars {
	return &Avatars{storage: storage, bucket: AvatarBucket}
}

func (a *Avatars) Upload(ctx context.Context, path, contentType string, data io.Reader) error {
	if a.storage == nil {
		return fmt.Errorf("storage client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	_, err := a.storage.UploadFile(a.bucket, path, data, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", a.bucket, path, err)
	}
	return nil
}

func (a *Avatars) PublicURL(path string) string {
	return a.storage.GetPublicUrl(a.bucket, path).SignedURL
}

func (a *Avatars) Remove(ctx context.Context, path string) error {
	if a.storage == nil {
		return fmt.Errorf("storage client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.storage.RemoveFile(a.bucket, []string{path}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", a.bucket, path, err)
	}
	return nil
}
