package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file read before the environment.
const ConfigFileEnv = "PAIRCONNECT_CONFIG"

// Config holds the process configuration.
type Config struct {
	SupabaseURL        string `yaml:"supabase_url"`
	SupabaseServiceKey string `yaml:"supabase_service_key"`
	SupabaseAnonKey    string `yaml:"supabase_anon_key"`
	SupabaseJWTSecret  string `yaml:"supabase_jwt_secret"`
	DatabaseURL        string `yaml:"database_url"`

	ResendAPIKey   string `yaml:"resend_api_key"`
	EmailFrom      string `yaml:"email_from"`
	EmailTransport string `yaml:"email_transport"`
	AppBaseURL     string `yaml:"app_base_url"`

	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	CORSOrigins string `yaml:"cors_origins"`

	NotifyWorkers   int           `yaml:"notify_workers"`
	NotifyQueueSize int           `yaml:"notify_queue_size"`
	NotifyTimeout   time.Duration `yaml:"notify_timeout"`
}

// Default returns the configuration used for every value left unset.
func Default() Config {
	return Config{
		EmailFrom:       "Pair Connect <noreply@pairconnect.dev>",
		AppBaseURL:      "https://pairconnect.dev",
		Port:            "8080",
		LogLevel:        "info",
		CORSOrigins:     "*",
		NotifyWorkers:   2,
		NotifyQueueSize: 100,
		NotifyTimeout:   10 * time.Second,
	}
}

// Load reads .env (when present), the optional YAML file named by
// PAIRCONNECT_CONFIG and then the environment, which wins over both. It
// fails when a required value is missing or a value is malformed.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseURL returns the Postgres DSN used by the migration binary.
func LoadDatabaseURL() (string, error) {
	cfg, err := read()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return cfg.DatabaseURL, nil
}

func read() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SUPABASE_URL":         &c.SupabaseURL,
		"SUPABASE_SERVICE_KEY": &c.SupabaseServiceKey,
		"SUPABASE_ANON_KEY":    &c.SupabaseAnonKey,
		"SUPABASE_JWT_SECRET":  &c.SupabaseJWTSecret,
		"DATABASE_URL":         &c.DatabaseURL,
		"RESEND_API_KEY":       &c.ResendAPIKey,
		"EMAIL_FROM":           &c.EmailFrom,
		"EMAIL_TRANSPORT":      &c.EmailTransport,
		"APP_BASE_URL":         &c.AppBaseURL,
		"PORT":                 &c.Port,
		"LOG_LEVEL":            &c.LogLevel,
		"CORS_ORIGINS":         &c.CORSOrigins,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"NOTIFY_WORKERS":    &c.NotifyWorkers,
		"NOTIFY_QUEUE_SIZE": &c.NotifyQueueSize,
	}
	for name, field := range ints {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = n
	}

	if v, ok := lookup("NOTIFY_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
		}
		c.NotifyTimeout = d
	}
	return nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.EmailTransport {
	case "", "resend", "function", "log":
	default:
		return fmt.Errorf("EMAIL_TRANSPORT: unknown transport %q", c.EmailTransport)
	}
	if c.NotifyWorkers < 1 {
		return errors.New("NOTIFY_WORKERS must be at least 1")
	}
	if c.NotifyQueueSize < 1 {
		return errors.New("NOTIFY_QUEUE_SIZE must be at least 1")
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

// CORSOriginList splits CORSOrigins on commas.
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
