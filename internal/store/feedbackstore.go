package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
	"github.com/awslearn-hub/tutor-core/pkg/retry"
)

// FeedbackStore is the authoritative append-only log of feedback entries.
// Entries live in memory for the process lifetime; the log behind it
// provides durability with the same best-effort contract as StateStore:
// a failed append surfaces to the caller but the in-memory entry stands.
type FeedbackStore struct {
	cfg     Config
	log     feedback.Log
	locks   *KeyLocks
	retrier *retry.Retrier
	logger  *logger.Logger

	mu      sync.RWMutex
	entries []*feedback.Entry
}

// NewFeedbackStore creates a feedback store over the given log. Pass the
// StateStore's lock table so feedback and progress mutations for one
// learner share the same serialization guarantee.
func NewFeedbackStore(flog feedback.Log, locks *KeyLocks, cfg Config, log *logger.Logger) *FeedbackStore {
	if locks == nil {
		locks = NewKeyLocks()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FeedbackStore{
		cfg:     cfg,
		log:     flog,
		locks:   locks,
		retrier: retry.PersistenceRetrier(cfg.RetryDelay),
		logger:  log.With(logger.String("component", "feedbackstore")),
	}
}

// Append validates nothing: the entry must already be a valid
// feedback.Entry (constructed via feedback.NewEntry). It stores the entry
// in memory under the learner's lock and persists it with one automatic
// retry. On persistence error the in-memory entry is retained and the
// storage error surfaces.
func (s *FeedbackStore) Append(ctx context.Context, e *feedback.Entry) error {
	lock := s.locks.Get(e.LearnerID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
		defer cancel()
		return s.log.Append(attemptCtx, e)
	})
	if err == nil {
		return nil
	}

	s.logger.Warn("persisting feedback entry failed, in-memory entry retained",
		logger.String("learner_id", e.LearnerID),
		logger.String("entry_id", e.ID),
		logger.Err(err))
	return shared.WrapError("store", "Append", storageKind(err),
		fmt.Sprintf("persist feedback entry %q", e.ID), err)
}

// ListSince returns copies of all entries with Timestamp >= since, oldest
// first. A zero since returns the full history.
func (s *FeedbackStore) ListSince(since time.Time) []*feedback.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*feedback.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if since.IsZero() || !e.Timestamp.Before(since) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out
}

// ListByLearner returns copies of all entries for one learner, oldest first.
func (s *FeedbackStore) ListByLearner(learnerID string) []*feedback.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*feedback.Entry
	for _, e := range s.entries {
		if e.LearnerID == learnerID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out
}

// Len returns the number of entries currently held in memory.
func (s *FeedbackStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// WarmUp loads the full persisted history into memory. Entries already in
// memory are kept; the merged log is re-sorted oldest first so aggregation
// windows stay correct regardless of load order.
func (s *FeedbackStore) WarmUp(ctx context.Context) error {
	persisted, err := s.log.ListSince(ctx, time.Time{})
	if err != nil {
		return shared.WrapError("store", "WarmUp", storageKind(err),
			"load feedback history", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		seen[e.ID] = true
	}
	for _, e := range persisted {
		if !seen[e.ID] {
			s.entries = append(s.entries, e)
		}
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Timestamp.Before(s.entries[j].Timestamp)
	})

	s.logger.Debug("warmed feedback entries", logger.Int("count", len(s.entries)))
	return nil
}
