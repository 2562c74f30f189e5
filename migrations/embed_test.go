package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_initial_schema.sql", "00002_user_bookmarks.sql"}, names)

	for _, name := range names {
		data, err := FS.ReadFile(name)
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.HasPrefix(body, "-- +goose Up"), name)
		assert.Contains(t, body, "-- +goose Down", name)
	}
}

func TestSchemaKeepsUniquenessConstraints(t *testing.T) {
	data, err := FS.ReadFile("00001_initial_schema.sql")
	require.NoError(t, err)
	schema := string(data)

	assert.Contains(t, schema, "UNIQUE (project_id, user_id)")
	assert.Contains(t, schema, "PRIMARY KEY (session_id, user_id)")
	assert.Contains(t, schema, "REFERENCES projects (id) ON DELETE CASCADE")
}
