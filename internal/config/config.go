// internal/config/config.go
//
// Process configuration, read once at startup.
// Sources, in order: the real environment, then a .env file in the working
// directory (godotenv never overrides variables that are already set).

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DefaultDatabasePath = "./data/azul.db"

// Config holds every tunable of the server.
type Config struct {
	Port      string `env:"PORT"      envDefault:"8000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`

	// Comma-separated list; "*" allows any origin.
	ClientOrigins  []string      `env:"CLIENT_ORIGIN"   envDefault:"*" envSeparator:","`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Unset means DefaultDatabasePath; set but empty disables the archive.
	DatabasePath string `env:"DATABASE_PATH"`

	// Empty disables event publishing.
	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"azul.sessions"`

	SessionMaxAge          time.Duration `env:"SESSION_MAX_AGE"          envDefault:"24h"`
	SessionFinishedTTL     time.Duration `env:"SESSION_FINISHED_TTL"     envDefault:"10m"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
	AbortOnDisconnect      bool          `env:"ABORT_ON_DISCONNECT"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, set := os.LookupEnv("DATABASE_PATH"); !set {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.SessionCleanupInterval <= 0 {
		return Config{}, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive, got %s", cfg.SessionCleanupInterval)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
