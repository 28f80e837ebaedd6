// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects the persistence backend wired behind the stores.
type Backend string

const (
	// BackendMemory keeps everything in process. Tests and one-shot tools.
	BackendMemory Backend = "memory"

	// BackendSQLite stores state in a local database file. The default.
	BackendSQLite Backend = "sqlite"

	// BackendPostgres stores state in PostgreSQL, for shared deployments.
	BackendPostgres Backend = "postgres"
)

// Config holds all engine configuration.
type Config struct {
	// Store holds state store tunables.
	Store StoreConfig

	// Scoring holds topic score update tunables.
	Scoring ScoringConfig

	// Persistence selects and configures the durable backend.
	Persistence PersistenceConfig

	// Logging holds log output settings.
	Logging LoggingConfig
}

// StoreConfig holds state store tunables.
type StoreConfig struct {
	// MaxMemorySize caps each learner's interaction log.
	MaxMemorySize int

	// SaveTimeout bounds each persistence write attempt.
	SaveTimeout time.Duration

	// RetryDelay is the pause before the automatic persistence retry.
	RetryDelay time.Duration

	// ActiveWindowDays is the trailing window for the active-learner
	// count in global statistics.
	ActiveWindowDays int
}

// ScoringConfig holds the EMA topic score parameters.
type ScoringConfig struct {
	// Alpha is the EMA learning rate, in (0,1].
	Alpha float64

	// EngagementSignal is the asymptote each interaction nudges toward.
	EngagementSignal float64

	// MasteryThreshold is the score at which a topic counts as mastered.
	MasteryThreshold float64
}

// PersistenceConfig selects the durable backend.
type PersistenceConfig struct {
	// Backend is one of memory, sqlite, postgres.
	Backend Backend

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// DatabaseURL is the connection string for the postgres backend.
	DatabaseURL string

	// RedisEnabled puts a Redis read-through cache in front of the
	// postgres backend.
	RedisEnabled bool

	// RedisHost and RedisPort locate the cache.
	RedisHost string
	RedisPort int

	// RedisPassword is the cache auth password (empty if no auth).
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// RedisTTL is how long cached records live.
	RedisTTL time.Duration
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			MaxMemorySize:    getEnvInt("TUTOR_MAX_MEMORY_SIZE", 1000),
			SaveTimeout:      getEnvDuration("TUTOR_SAVE_TIMEOUT", 5*time.Second),
			RetryDelay:       getEnvDuration("TUTOR_RETRY_DELAY", 100*time.Millisecond),
			ActiveWindowDays: getEnvInt("TUTOR_ACTIVE_WINDOW_DAYS", 7),
		},
		Scoring: ScoringConfig{
			Alpha:            getEnvFloat64("TUTOR_EMA_ALPHA", 0.3),
			EngagementSignal: getEnvFloat64("TUTOR_ENGAGEMENT_SIGNAL", 1.0),
			MasteryThreshold: getEnvFloat64("TUTOR_MASTERY_THRESHOLD", 0.8),
		},
		Persistence: PersistenceConfig{
			Backend:       Backend(getEnv("TUTOR_BACKEND", string(BackendSQLite))),
			SQLitePath:    getEnv("TUTOR_SQLITE_PATH", "tutor.db"),
			DatabaseURL:   getEnv("TUTOR_DATABASE_URL", ""),
			RedisEnabled:  getEnvBool("TUTOR_REDIS_ENABLED", false),
			RedisHost:     getEnv("TUTOR_REDIS_HOST", "localhost"),
			RedisPort:     getEnvInt("TUTOR_REDIS_PORT", 6379),
			RedisPassword: getEnv("TUTOR_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("TUTOR_REDIS_DB", 0),
			RedisTTL:      getEnvDuration("TUTOR_REDIS_TTL", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("TUTOR_LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Store.MaxMemorySize < 0 {
		errs = append(errs, "TUTOR_MAX_MEMORY_SIZE must be >= 0")
	}
	if c.Scoring.Alpha <= 0 || c.Scoring.Alpha > 1 {
		errs = append(errs, "TUTOR_EMA_ALPHA must be in (0,1]")
	}
	if c.Scoring.MasteryThreshold <= 0 || c.Scoring.MasteryThreshold > 1 {
		errs = append(errs, "TUTOR_MASTERY_THRESHOLD must be in (0,1]")
	}

	switch c.Persistence.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Persistence.SQLitePath == "" {
			errs = append(errs, "TUTOR_SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Persistence.DatabaseURL == "" {
			errs = append(errs, "TUTOR_DATABASE_URL is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown TUTOR_BACKEND %q", c.Persistence.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat64(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
