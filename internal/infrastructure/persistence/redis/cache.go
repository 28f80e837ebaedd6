// Package redis implements a Redis read-through cache in front of any
// learner.Repository. Useful when multiple engine instances share one
// PostgreSQL backend and hot learner records should not hit the database
// on every warm-up or snapshot miss.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// TTL is how long cached records live before falling back to the
	// underlying repository.
	TTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        6379,
		DB:          0,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
		TTL:         10 * time.Minute,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHED REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const recordKeyPrefix = "tutor:learner:"

// CachedLearnerRepository decorates a learner.Repository with a Redis
// read-through cache. Saves write through to the inner repository first;
// cache failures degrade to the inner repository and are logged, never
// surfaced.
type CachedLearnerRepository struct {
	inner  learner.Repository
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedLearnerRepository creates the cache decorator. The connection
// is verified with a ping.
func NewCachedLearnerRepository(ctx context.Context, inner learner.Repository, cfg Config, log *logger.Logger) (*CachedLearnerRepository, error) {
	if log == nil {
		log = logger.Nop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	return &CachedLearnerRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log.With(logger.String("component", "redis_cache")),
	}, nil
}

// Load checks the cache first and falls through to the inner repository on
// a miss, populating the cache on the way back.
func (r *CachedLearnerRepository) Load(ctx context.Context, id string) (*learner.Record, error) {
	raw, err := r.client.Get(ctx, recordKeyPrefix+id).Bytes()
	if err == nil {
		var rec learner.Record
		if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil {
			return &rec, nil
		}
		// Unparseable cache entry: drop it and fall through.
		_ = r.client.Del(ctx, recordKeyPrefix+id).Err()
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("cache read failed, falling through",
			logger.String("learner_id", id), logger.Err(err))
	}

	rec, err := r.inner.Load(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	r.cache(ctx, rec)
	return rec, nil
}

// Save writes through to the inner repository and refreshes the cache.
func (r *CachedLearnerRepository) Save(ctx context.Context, rec *learner.Record) error {
	if err := r.inner.Save(ctx, rec); err != nil {
		return err
	}
	r.cache(ctx, rec)
	return nil
}

// ListIDs always consults the inner repository; the cache holds only hot
// records, not the full population.
func (r *CachedLearnerRepository) ListIDs(ctx context.Context) ([]string, error) {
	return r.inner.ListIDs(ctx)
}

// Close releases the Redis client.
func (r *CachedLearnerRepository) Close() error {
	return r.client.Close()
}

func (r *CachedLearnerRepository) cache(ctx context.Context, rec *learner.Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, recordKeyPrefix+rec.ID, raw, r.ttl).Err(); err != nil {
		r.log.Warn("cache write failed",
			logger.String("learner_id", rec.ID), logger.Err(err))
	}
}
