package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Backend selects where a component keeps its data.
type Backend string

const (
	// BackendMemory keeps data in process memory; it is lost on restart.
	BackendMemory Backend = "memory"
	// BackendPostgres stores data in the configured Postgres database.
	BackendPostgres Backend = "postgres"
	// BackendRedis stores data in the configured Redis deployment.
	BackendRedis Backend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for Backend.
func (b *Backend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch Backend(v) {
	case BackendMemory, BackendPostgres, BackendRedis:
		*b = Backend(v)
		return nil
	default:
		return fmt.Errorf("invalid backend: %q (valid options: memory, postgres, redis)", v)
	}
}

// SeedAdminConfig describes the bootstrap admin created at startup.
// Seeding is skipped when Identity or Secret is empty.
type SeedAdminConfig struct {
	Identity    string `env:"IDENTITY"`
	Secret      string `env:"SECRET"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Administrator"`
}

// Enabled reports whether a seed admin is configured.
func (s SeedAdminConfig) Enabled() bool {
	return s.Identity != "" && s.Secret != ""
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// DirectoryBackend holds user accounts and content items: postgres or memory.
	DirectoryBackend Backend `env:"DIRECTORY_BACKEND" envDefault:"postgres"`

	// ReturnToBackend holds the pending post-login destination: redis or memory.
	ReturnToBackend Backend `env:"RETURN_TO_BACKEND" envDefault:"memory"`

	// ReturnToTTL bounds how long a saved destination survives.
	ReturnToTTL time.Duration `env:"RETURN_TO_TTL" envDefault:"10m"`

	// AnalyticsBackend holds the admin console counters: redis or memory.
	AnalyticsBackend Backend `env:"ANALYTICS_BACKEND" envDefault:"memory"`

	// BcryptCost is the work factor for stored credential hashes.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// LoginRateLimit is the number of login and registration attempts allowed
	// per client IP per minute. Zero disables limiting.
	LoginRateLimit int `env:"AUTH_LOGIN_RATE_LIMIT" envDefault:"10"`

	// RevalidateSessions re-checks approval against the directory on each guarded request.
	RevalidateSessions bool `env:"AUTH_REVALIDATE_SESSIONS" envDefault:"true"`

	SeedAdmin SeedAdminConfig `envPrefix:"SEED_ADMIN_"`
}

// Sanitize applies guardrails to authentication values.
func (a *AuthConfig) Sanitize() {
	if a.DirectoryBackend == BackendRedis || a.DirectoryBackend == "" {
		a.DirectoryBackend = BackendPostgres
	}
	if a.ReturnToBackend == BackendPostgres || a.ReturnToBackend == "" {
		a.ReturnToBackend = BackendMemory
	}
	if a.AnalyticsBackend == BackendPostgres || a.AnalyticsBackend == "" {
		a.AnalyticsBackend = BackendMemory
	}
	if a.ReturnToTTL <= 0 {
		a.ReturnToTTL = 10 * time.Minute
	}
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
	if a.LoginRateLimit < 0 {
		a.LoginRateLimit = 0
	}
	a.SeedAdmin.Identity = strings.ToLower(strings.TrimSpace(a.SeedAdmin.Identity))
	a.SeedAdmin.DisplayName = strings.TrimSpace(a.SeedAdmin.DisplayName)
}
