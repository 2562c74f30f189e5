package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	ConfigFileEnv, "SUPABASE_URL", "SUPABASE_SERVICE_KEY", "SUPABASE_ANON_KEY",
	"SUPABASE_JWT_SECRET", "DATABASE_URL", "RESEND_API_KEY", "EMAIL_FROM",
	"EMAIL_TRANSPORT", "APP_BASE_URL", "PORT", "LOG_LEVEL", "CORS_ORIGINS",
	"NOTIFY_WORKERS", "NOTIFY_QUEUE_SIZE", "NOTIFY_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Pair Connect <noreply@pairconnect.dev>", cfg.EmailFrom)
	assert.Equal(t, 2, cfg.NotifyWorkers)
	assert.Equal(t, 100, cfg.NotifyQueueSize)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOriginList())
	assert.Empty(t, cfg.SupabaseJWTSecret)
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_SERVICE_KEY")
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
	assert.NotContains(t, err.Error(), "SUPABASE_URL")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pairconnect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
supabase_url: https://from-file.supabase.co
supabase_service_key: file-service
supabase_anon_key: file-anon
port: "9000"
log_level: debug
notify_workers: 5
notify_timeout: 3s
cors_origins: "https://a.example, https://b.example"
`), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "7000")
	t.Setenv("SUPABASE_ANON_KEY", "env-anon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "env-anon", cfg.SupabaseAnonKey)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.NotifyWorkers)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())
}

func TestLoad_MalformedValues(t *testing.T) {
	cases := map[string][2]string{
		"bad workers":   {"NOTIFY_WORKERS", "many"},
		"zero workers":  {"NOTIFY_WORKERS", "0"},
		"bad timeout":   {"NOTIFY_TIMEOUT", "soon"},
		"bad level":     {"LOG_LEVEL", "loud"},
		"bad transport": {"EMAIL_TRANSPORT", "fax"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDatabaseURL(t *testing.T) {
	clearEnv(t)
	_, err := LoadDatabaseURL()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/pairconnect")
	dsn, err := LoadDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/pairconnect", dsn)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("k", "v").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = NewLogger("chatty", nil)
	assert.Error(t, err)
}

func TestNewSupabaseClient_RequiresCredentials(t *testing.T) {
	_, err := NewSupabaseClient("", "key")
	assert.Error(t, err)
	_, err = NewSupabaseClient("https://project.supabase.co", "")
	assert.Error(t, err)
}
