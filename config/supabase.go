package config

import (
	"errors"
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// NewSupabaseClient initializes a Supabase client for the given key. The
// service role key gives admin access; the anonymous key is what end users
// hold.
func NewSupabaseClient(url, key string) (*supa.Client, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}
	return client, nil
}
