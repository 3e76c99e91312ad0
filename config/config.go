// Package config loads the AREA engine's environment-variable configuration and validates it
// before the rest of the process starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig provides utilities for loading configuration from environment variables.
type EnvConfig struct {
	prefix string
}

// NewEnvConfig creates a new environment configuration loader.
func NewEnvConfig(prefix string) *EnvConfig {
	return &EnvConfig{prefix: prefix}
}

// GetString retrieves a string value from environment with optional default.
func (ec *EnvConfig) GetString(key, defaultValue string) string {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		return value
	}
	return defaultValue
}

// MustGetString retrieves a required string value from environment or panics.
func (ec *EnvConfig) MustGetString(key string) string {
	fullKey := ec.buildKey(key)
	value := os.Getenv(fullKey)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s not set", fullKey))
	}
	return value
}

// GetInt retrieves an integer value from environment with optional default.
func (ec *EnvConfig) GetInt(key string, defaultValue int) int {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from environment with optional default.
func (ec *EnvConfig) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration value from environment with optional default.
func (ec *EnvConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a comma-separated string slice from environment.
func (ec *EnvConfig) GetStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(ec.buildKey(key))
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (ec *EnvConfig) buildKey(key string) string {
	if ec.prefix != "" {
		return ec.prefix + "_" + key
	}
	return key
}

// SchedulerConfig controls the polling scheduler (spec §4.1, §6).
type SchedulerConfig struct {
	Enabled         bool
	CheckInterval   time.Duration
	Timezone        string
	LeaderLockMode  string // "postgres", "redis", or "file"
	LeaderLockPath  string // used when LeaderLockMode == "file"
	HTTPCallTimeout time.Duration
}

// SMTPConfig holds the SMTP collaborator's settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	UseTLS    bool
}

// OAuthAppConfig is one provider's OAuth app credentials.
type OAuthAppConfig struct {
	ClientID     string
	ClientSecret string
}

// Config is the fully resolved AREA engine configuration (spec §6).
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	CORSOrigins  []string
	FrontendURL  string
	RedisURL     string

	Scheduler SchedulerConfig
	SMTP      SMTPConfig

	Google   OAuthAppConfig
	Facebook OAuthAppConfig
	GitHub   OAuthAppConfig
	Spotify  OAuthAppConfig
}

// Load reads the process environment (no prefix — the variable names in spec §6 are used as-is)
// and returns a validated Config.
func Load() (*Config, error) {
	env := NewEnvConfig("")
	v := NewValidator()

	file, err := LoadFile(env.GetString("CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}

	schedulerInterval := file.Scheduler.CheckIntervalMinutes
	if schedulerInterval == 0 {
		schedulerInterval = 1
	}
	schedulerTimezone := file.Scheduler.Timezone
	if schedulerTimezone == "" {
		schedulerTimezone = "UTC"
	}
	leaderLockMode := file.Scheduler.LeaderLockMode
	if leaderLockMode == "" {
		leaderLockMode = "postgres"
	}
	smtpHost := file.SMTP.Host
	if smtpHost == "" {
		smtpHost = "localhost"
	}
	smtpPort := file.SMTP.Port
	if smtpPort == 0 {
		smtpPort = 587
	}

	cfg := &Config{
		DatabaseURL:  env.GetString("DATABASE_URL", file.DatabaseURL),
		JWTSecretKey: env.GetString("JWT_SECRET_KEY", ""),
		CORSOrigins:  env.GetStringSlice("CORS_ORIGINS", []string{"*"}),
		FrontendURL:  env.GetString("FRONTEND_URL", file.FrontendURL),
		RedisURL:     env.GetString("REDIS_URL", file.RedisURL),

		Scheduler: SchedulerConfig{
			Enabled:         env.GetBool("SCHEDULER_ENABLED", true),
			CheckInterval:   time.Duration(env.GetInt("SCHEDULER_CHECK_INTERVAL_MINUTES", schedulerInterval)) * time.Minute,
			Timezone:        env.GetString("SCHEDULER_TIMEZONE", schedulerTimezone),
			LeaderLockMode:  env.GetString("SCHEDULER_LEADER_LOCK_MODE", leaderLockMode),
			LeaderLockPath:  env.GetString("SCHEDULER_LEADER_LOCK_PATH", "/tmp/area_scheduler.lock"),
			HTTPCallTimeout: env.GetDuration("SCHEDULER_HTTP_CALL_TIMEOUT", 30*time.Second),
		},

		SMTP: SMTPConfig{
			Host:      env.GetString("SMTP_HOST", smtpHost),
			Port:      env.GetInt("SMTP_PORT", smtpPort),
			Username:  env.GetString("SMTP_USERNAME", ""),
			Password:  env.GetString("SMTP_PASSWORD", ""),
			FromEmail: env.GetString("SMTP_FROM_EMAIL", file.SMTP.FromEmail),
			UseTLS:    env.GetBool("SMTP_USE_TLS", true),
		},

		Google:   OAuthAppConfig{ClientID: env.GetString("GOOGLE_CLIENT_ID", ""), ClientSecret: env.GetString("GOOGLE_CLIENT_SECRET", "")},
		Facebook: OAuthAppConfig{ClientID: env.GetString("FACEBOOK_CLIENT_ID", ""), ClientSecret: env.GetString("FACEBOOK_CLIENT_SECRET", "")},
		GitHub:   OAuthAppConfig{ClientID: env.GetString("GITHUB_CLIENT_ID", ""), ClientSecret: env.GetString("GITHUB_CLIENT_SECRET", "")},
		Spotify:  OAuthAppConfig{ClientID: env.GetString("SPOTIFY_CLIENT_ID", ""), ClientSecret: env.GetString("SPOTIFY_CLIENT_SECRET", "")},
	}

	v.RequireURL("DATABASE_URL", normalizeForURLCheck(cfg.DatabaseURL))
	v.RequireString("JWT_SECRET_KEY", cfg.JWTSecretKey)
	v.RequirePositiveInt("SCHEDULER_CHECK_INTERVAL_MINUTES", int(cfg.Scheduler.CheckInterval/time.Minute))
	v.RequireOneOf("SCHEDULER_LEADER_LOCK_MODE", cfg.Scheduler.LeaderLockMode, []string{"postgres", "redis", "file"})

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalizeForURLCheck lets postgres:// / postgresql:// DSNs pass the generic RequireURL check,
// which otherwise only accepts http(s).
func normalizeForURLCheck(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "http://" + strings.SplitN(dsn, "://", 2)[1]
	}
	return dsn
}

// Validator accumulates configuration validation errors.
type Validator struct {
	errors []string
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{errors: make([]string, 0)}
}

// RequireString validates that a string field is not empty.
func (v *Validator) RequireString(field, value string) {
	if value == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
	}
}

// RequirePositiveInt validates that an integer field is positive.
func (v *Validator) RequirePositiveInt(field string, value int) {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Sprintf("%s must be positive", field))
	}
}

// RequireURL validates that a string looks like an http(s) URL.
func (v *Validator) RequireURL(field, value string) {
	if value == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
		return
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid URL", field))
	}
}

// RequireOneOf validates that a value is one of the allowed options.
func (v *Validator) RequireOneOf(field, value string, allowed []string) {
	for _, option := range allowed {
		if value == option {
			return
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

// IsValid returns true if there are no validation errors.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []string {
	return v.errors
}

// ErrorString returns all validation errors joined into one string.
func (v *Validator) ErrorString() string {
	return strings.Join(v.errors, "; ")
}

// Validate returns an error describing all accumulated problems, or nil.
func (v *Validator) Validate() error {
	if !v.IsValid() {
		return fmt.Errorf("configuration validation failed: %s", v.ErrorString())
	}
	return nil
}
