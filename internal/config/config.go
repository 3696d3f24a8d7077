// Package config handles application configuration loading. Every key has
// a development default, can be set in an optional config file and is
// overridden by the environment variable of the same name.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clubsite/internal/models"
	"clubsite/internal/policy"
)

const (
	defaultDBPassword   = "changeme"
	defaultSeedPassword = "changeme"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// SessionSecure marks the session cookie Secure.
	SessionSecure bool

	// StoreTimeout bounds each content store call.
	StoreTimeout time.Duration
	// SyncDebounce is the quiet period before live feeds refetch.
	SyncDebounce time.Duration
	// ResponseCacheTTL is how long public listings stay cached.
	ResponseCacheTTL time.Duration

	RateLimit   int
	CORSOrigins []string

	// NotifyChannel is the Postgres channel carrying change events.
	NotifyChannel string

	Policy policy.Policy

	SeedAdminEmail    string
	SeedAdminPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "clubsite")
	v.SetDefault("POSTGRES_PASSWORD", defaultDBPassword)
	v.SetDefault("POSTGRES_DB", "clubsite")

	v.SetDefault("VALKEY_HOST", "localhost")
	v.SetDefault("VALKEY_PORT", "6379")
	v.SetDefault("VALKEY_PASSWORD", "")
	v.SetDefault("VALKEY_DB", 0)
	v.SetDefault("SESSION_SECURE", false)

	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("SYNC_DEBOUNCE", "300ms")
	v.SetDefault("RESPONSE_CACHE_TTL", "30s")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("NOTIFY_CHANNEL", "blog_changes")

	v.SetDefault("POLICY_MODERATE_ROLE", models.RoleCommunicationsDirector.String())
	v.SetDefault("POLICY_CATEGORY_ROLE", models.RoleCoPresident.String())
	v.SetDefault("POLICY_ROLE_ADMIN_ROLE", models.RolePresident.String())

	v.SetDefault("SEED_ADMIN_EMAIL", "admin@club.local")
	v.SetDefault("SEED_ADMIN_PASSWORD", defaultSeedPassword)
}

// Load reads configuration from the file at path (skipped when empty) and
// the environment. Returns an error if a value is malformed or if
// development defaults are left in place in production mode.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       v.GetInt("VALKEY_DB"),
		SessionSecure:  v.GetBool("SESSION_SECURE"),

		StoreTimeout:     v.GetDuration("STORE_TIMEOUT"),
		SyncDebounce:     v.GetDuration("SYNC_DEBOUNCE"),
		ResponseCacheTTL: v.GetDuration("RESPONSE_CACHE_TTL"),
		RateLimit:        v.GetInt("RATE_LIMIT_PER_MINUTE"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		NotifyChannel:    v.GetString("NOTIFY_CHANNEL"),

		SeedAdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	if cfg.StoreTimeout <= 0 || cfg.SyncDebounce <= 0 || cfg.ResponseCacheTTL <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT, SYNC_DEBOUNCE and RESPONSE_CACHE_TTL must be positive durations")
	}
	if cfg.ValkeyDB < 0 {
		return nil, fmt.Errorf("VALKEY_DB must not be negative")
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if strings.TrimSpace(cfg.NotifyChannel) == "" {
		return nil, fmt.Errorf("NOTIFY_CHANNEL must not be empty")
	}

	pol, err := loadPolicy(v)
	if err != nil {
		return nil, err
	}
	cfg.Policy = pol

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SeedAdminPassword == defaultSeedPassword {
			return nil, fmt.Errorf("SEED_ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

func loadPolicy(v *viper.Viper) (policy.Policy, error) {
	var p policy.Policy
	for _, f := range []struct {
		key string
		dst *models.Role
	}{
		{"POLICY_MODERATE_ROLE", &p.ModerateThreshold},
		{"POLICY_CATEGORY_ROLE", &p.CategoryThreshold},
		{"POLICY_ROLE_ADMIN_ROLE", &p.RoleAdminThreshold},
	} {
		r, err := models.ParseRole(v.GetString(f.key))
		if err != nil {
			return p, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = r
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("policy: %w", err)
	}
	return p, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string. The notify channel rides
// along as a runtime parameter so change triggers fired by this process's
// sessions publish on it.
func (c *Config) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
	if c.NotifyChannel != "" {
		dsn += "&clubsite.notify_channel=" + url.QueryEscape(c.NotifyChannel)
	}
	return dsn
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
