// Package config resolves runtime settings from defaults, an optional YAML
// file and TAGDESK_* environment variables, in that order.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// ErrMissingEndpoint is returned when no tag service base URL is configured.
var ErrMissingEndpoint = errors.New("TAGDESK_API_ENDPOINT is required")

// Config holds every runtime setting of the server.
type Config struct {
	Env            string          `yaml:"env" validate:"oneof=development production test"`
	Addr           string          `yaml:"addr" validate:"required"`
	LogLevel       string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	APIEndpoint    string          `yaml:"api_endpoint" validate:"required,http_url"`
	CSRFKey        string          `yaml:"csrf_key" validate:"omitempty,hexadecimal,len=64"`
	TrustedOrigins []string        `yaml:"trusted_origins" validate:"dive,hostname_port"`
	Upstream       UpstreamConfig  `yaml:"upstream"`
	Session        SessionConfig   `yaml:"session"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	SlowRequestMs  int             `yaml:"slow_request_ms" validate:"gte=1"`
	SlowUpstreamMs int             `yaml:"slow_upstream_ms" validate:"gte=1"`
}

// UpstreamConfig bounds traffic to the tag service.
type UpstreamConfig struct {
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int           `yaml:"burst" validate:"gte=1"`
	FanOut            int           `yaml:"fan_out" validate:"gte=1,lte=32"`
}

// SessionConfig controls the per-browser lookup caches.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	MaxEntries    int           `yaml:"max_entries" validate:"gte=1"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gt=0"`
}

// RateLimitConfig is the inbound per-client limit.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" validate:"gte=1"`
}

// Default returns the built-in settings. APIEndpoint has no default.
func Default() Config {
	return Config{
		Env:            EnvDevelopment,
		Addr:           ":8080",
		LogLevel:       "info",
		TrustedOrigins: []string{"localhost:8080", "127.0.0.1:8080"},
		Upstream: UpstreamConfig{
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			FanOut:            4,
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			MaxEntries:    512,
			SweepInterval: time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		SlowRequestMs:  200,
		SlowUpstreamMs: 1000,
	}
}

// Load resolves the configuration.
// PRE: getenv is non-nil (os.Getenv in production, a map lookup in tests)
// POST: the returned Config is validated; a missing endpoint yields ErrMissingEndpoint
func Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("TAGDESK_CONFIG"); path != "" {
		if err := cfg.mergeFile(path, getenv); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays settings from a YAML file. ${VAR} and ${VAR:-default}
// references are expanded before parsing.
func (c *Config) mergeFile(path string, getenv func(string) string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	data = expandEnvVars(data, getenv)
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte, getenv func(string) string) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, fallback, hasDefault := strings.Cut(expr, ":-")
		val := getenv(name)
		if val == "" && hasDefault {
			val = fallback
		}
		return []byte(val)
	})
}

// applyEnv overlays TAGDESK_* variables. Empty variables are ignored.
func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.Env, getenv("TAGDESK_ENV"))
	setString(&c.Addr, getenv("TAGDESK_ADDR"))
	setString(&c.LogLevel, strings.ToLower(getenv("TAGDESK_LOG_LEVEL")))
	setString(&c.APIEndpoint, getenv("TAGDESK_API_ENDPOINT"))
	setString(&c.CSRFKey, getenv("TAGDESK_CSRF_KEY"))
	if v := getenv("TAGDESK_TRUSTED_ORIGINS"); v != "" {
		c.TrustedOrigins = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TAGDESK_UPSTREAM_BURST", &c.Upstream.Burst},
		{"TAGDESK_UPSTREAM_FANOUT", &c.Upstream.FanOut},
		{"TAGDESK_SESSION_MAX_ENTRIES", &c.Session.MaxEntries},
		{"TAGDESK_RATE_LIMIT_BURST", &c.RateLimit.Burst},
		{"TAGDESK_SLOW_REQUEST_MS", &c.SlowRequestMs},
		{"TAGDESK_SLOW_UPSTREAM_MS", &c.SlowUpstreamMs},
	}
	for _, e := range ints {
		if err := setInt(e.dst, e.key, getenv(e.key)); err != nil {
			return err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"TAGDESK_UPSTREAM_RPS", &c.Upstream.RequestsPerSecond},
		{"TAGDESK_RATE_LIMIT_RPS", &c.RateLimit.RequestsPerSecond},
	}
	for _, e := range floats {
		if err := setFloat(e.dst, e.key, getenv(e.key)); err != nil {
			return err
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TAGDESK_UPSTREAM_TIMEOUT", &c.Upstream.Timeout},
		{"TAGDESK_SESSION_TTL", &c.Session.TTL},
		{"TAGDESK_SESSION_SWEEP_INTERVAL", &c.Session.SweepInterval},
	}
	for _, e := range durations {
		if err := setDuration(e.dst, e.key, getenv(e.key)); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, key, v string) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key, v string) error {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints plus the production-only requirements.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIEndpoint) == "" {
		return ErrMissingEndpoint
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.IsProduction() && c.CSRFKey == "" {
		return errors.New("TAGDESK_CSRF_KEY is required in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CSRFKeyBytes decodes the configured CSRF secret. Without one, a random
// key is generated; tokens then do not survive a restart.
// POST: returns 32 bytes; generated reports whether the key is random
func (c Config) CSRFKeyBytes() (key []byte, generated bool, err error) {
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, false, errors.New("TAGDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate CSRF key: %w", err)
	}
	return key, true, nil
}
