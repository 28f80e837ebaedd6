package application

import (
	"context"
	"fmt"

	"github.com/awslearn-hub/tutor-core/config"
	"github.com/awslearn-hub/tutor-core/internal/application/command"
	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/memory"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/postgres"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/redis"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/sqlite"
	"github.com/awslearn-hub/tutor-core/internal/store"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION FROM CONFIG
// ══════════════════════════════════════════════════════════════════════════════

// Build constructs an engine with the persistence backend the configuration
// selects. The returned cleanup releases backend resources and must be
// called after Engine.Close.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Engine, func() error, error) {
	repo, flog, cleanup, err := buildBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	eng := NewEngine(repo, flog, Options{
		Store: store.Config{
			MaxLogSize:  cfg.Store.MaxMemorySize,
			SaveTimeout: cfg.Store.SaveTimeout,
			RetryDelay:  cfg.Store.RetryDelay,
		},
		Scoring: command.ScoringConfig{
			Alpha:            cfg.Scoring.Alpha,
			EngagementSignal: cfg.Scoring.EngagementSignal,
			MasteryThreshold: cfg.Scoring.MasteryThreshold,
		},
		ActiveWindowDays: cfg.Store.ActiveWindowDays,
		AsyncEvents: true,
		Logger:      log,
	})
	return eng, cleanup, nil
}

func buildBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (learner.Repository, feedback.Log, func() error, error) {
	switch cfg.Persistence.Backend {
	case config.BackendMemory:
		return memory.NewLearnerRepository(), memory.NewFeedbackLog(), func() error { return nil }, nil

	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.Persistence.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return st.LearnerRepository(), st.FeedbackLog(), st.Close, nil

	case config.BackendPostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Persistence.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}

		var repo learner.Repository = postgres.NewLearnerRepository(conn)
		cleanup := func() error {
			conn.Close()
			return nil
		}

		if cfg.Persistence.RedisEnabled {
			cached, err := redis.NewCachedLearnerRepository(ctx, repo, redis.Config{
				Host:     cfg.Persistence.RedisHost,
				Port:     cfg.Persistence.RedisPort,
				Password: cfg.Persistence.RedisPassword,
				DB:       cfg.Persistence.RedisDB,
				TTL:      cfg.Persistence.RedisTTL,
			}, log)
			if err != nil {
				conn.Close()
				return nil, nil, nil, err
			}
			repo = cached
			cleanup = func() error {
				err := cached.Close()
				conn.Close()
				return err
			}
		}
		return repo, postgres.NewFeedbackRepository(conn), cleanup, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
}
