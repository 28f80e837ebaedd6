// Package store implements the in-memory authoritative state for learners
// and feedback, backed by a durable persistence port. All mutations flow
// through per-learner-id serialized updates; reads hand out copies and
// never write.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
	"github.com/awslearn-hub/tutor-core/pkg/retry"
)

// Config holds state store tunables.
type Config struct {
	// MaxLogSize caps each learner's interaction log; oldest entries are
	// evicted first once the cap is exceeded. <= 0 means unbounded.
	MaxLogSize int

	// SaveTimeout bounds each persistence write attempt. A timeout is a
	// storage error, not silently swallowed.
	SaveTimeout time.Duration

	// RetryDelay is the pause before the single automatic retry of a
	// failed persistence write.
	RetryDelay time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxLogSize:  1000,
		SaveTimeout: 5 * time.Second,
		RetryDelay:  100 * time.Millisecond,
	}
}

// Mutation transforms a learner record in place. It must be a pure function
// of the record: on error nothing is persisted and the prior state stays
// untouched.
type Mutation func(rec *learner.Record) error

// StateStore is the authoritative learner-record store. The in-memory map
// is the source of truth; the repository behind it provides durability on
// a best-effort basis (a failed save surfaces to the caller but does not
// roll back memory).
type StateStore struct {
	cfg     Config
	repo    learner.Repository
	locks   *KeyLocks
	retrier *retry.Retrier
	log     *logger.Logger

	mu      sync.RWMutex
	records map[string]*learner.Record
}

// NewStateStore creates a state store over the given repository. The lock
// table may be shared with a FeedbackStore so both honor one id-level
// serialization guarantee.
func NewStateStore(repo learner.Repository, locks *KeyLocks, cfg Config, log *logger.Logger) *StateStore {
	if locks == nil {
		locks = NewKeyLocks()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StateStore{
		cfg:     cfg,
		repo:    repo,
		locks:   locks,
		retrier: retry.PersistenceRetrier(cfg.RetryDelay),
		log:     log.With(logger.String("component", "statestore")),
		records: make(map[string]*learner.Record),
	}
}

// Config returns the store configuration.
func (s *StateStore) Config() Config { return s.cfg }

// Snapshot returns a read-only copy of a learner's record. Unseen ids get a
// fresh default record; unlike Apply this never creates a persisted entry -
// reads never write.
func (s *StateStore) Snapshot(ctx context.Context, id string) (*learner.Record, error) {
	// Committed records are immutable (Apply swaps in a fresh copy), so
	// cloning outside the map lock is safe.
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec.Clone(), nil
	}

	loaded, err := s.loadPersisted(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return learner.NewRecord(id), nil
	}
	return loaded, nil
}

// Apply loads or lazily creates the record for a learner, runs the mutation
// against a working copy under the learner's lock, commits the result to
// memory, and persists it. Concurrent Apply calls for the same id never
// interleave; different ids proceed concurrently.
//
// On mutation error nothing changes. On persistence error the in-memory
// update stands and the storage error surfaces alongside the new record.
func (s *StateStore) Apply(ctx context.Context, id string, mutate Mutation) (*learner.Record, error) {
	lock := s.locks.Get(id)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.records[id] = next
	s.mu.Unlock()

	if err := s.persist(ctx, next); err != nil {
		return next.Clone(), err
	}
	return next.Clone(), nil
}

// ForEach invokes fn with a snapshot copy of every record known in memory.
// The scan is point-in-time per record; cross-learner atomicity is not
// guaranteed and not needed for statistics.
func (s *StateStore) ForEach(fn func(rec *learner.Record)) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.RLock()
		rec, ok := s.records[id]
		var clone *learner.Record
		if ok {
			clone = rec.Clone()
		}
		s.mu.RUnlock()
		if clone != nil {
			fn(clone)
		}
	}
}

// Len returns the number of learners currently known in memory.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// WarmUp primes the in-memory map with every persisted record, so that
// cross-learner statistics see learners who have not been active since the
// process started. Corrupt records are skipped with a warning.
func (s *StateStore) WarmUp(ctx context.Context) error {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return shared.WrapError("store", "WarmUp", shared.ErrStorage, "list learner ids", err)
	}

	for _, id := range ids {
		lock := s.locks.Get(id)
		lock.Lock()
		if _, err := s.loadLocked(ctx, id); err != nil {
			lock.Unlock()
			return err
		}
		lock.Unlock()
	}

	s.log.Debug("warmed learner records", logger.Int("count", len(ids)))
	return nil
}

// loadLocked returns the live record for id, pulling it from persistence or
// creating it fresh on first access. The caller must hold the id's lock.
func (s *StateStore) loadLocked(ctx context.Context, id string) (*learner.Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	loaded, err := s.loadPersisted(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = learner.NewRecord(id)
	}

	s.mu.Lock()
	s.records[id] = loaded
	s.mu.Unlock()
	return loaded, nil
}

// loadPersisted fetches a record from the repository. A corrupt stored
// record is treated as absence and warn-logged: serving the learner beats
// blocking on unrecoverable history. Returns (nil, nil) when absent.
func (s *StateStore) loadPersisted(ctx context.Context, id string) (*learner.Record, error) {
	rec, err := s.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrCorruptRecord) {
			s.log.Warn("corrupt learner record, starting fresh",
				logger.String("learner_id", id), logger.Err(err))
			return nil, nil
		}
		return nil, shared.WrapError("store", "Load", storageKind(err),
			fmt.Sprintf("load learner %q", id), err)
	}
	if rec == nil {
		return nil, nil
	}
	rec.Normalize()
	return rec, nil
}

// persist writes the record through the repository with one automatic
// retry. Each attempt is bounded by the configured save timeout.
func (s *StateStore) persist(ctx context.Context, rec *learner.Record) error {
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
		defer cancel()
		return s.repo.Save(attemptCtx, rec)
	})
	if err == nil {
		return nil
	}

	s.log.Warn("persisting learner record failed, in-memory state retained",
		logger.String("learner_id", rec.ID), logger.Err(err))
	return shared.WrapError("store", "Save", storageKind(err),
		fmt.Sprintf("persist learner %q", rec.ID), err)
}

// storageKind maps an underlying error to the storage error family.
func storageKind(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrStorageTimeout
	}
	return shared.ErrStorage
}
