// Package memory implements in-process persistence adapters. They satisfy
// the persistence ports without external infrastructure, which makes them
// the default for tests and single-shot tooling.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository over a map.
type LearnerRepository struct {
	mu      sync.RWMutex
	records map[string]*learner.Record
}

// NewLearnerRepository creates an empty in-memory learner repository.
func NewLearnerRepository() *LearnerRepository {
	return &LearnerRepository{records: make(map[string]*learner.Record)}
}

// Load returns the stored record, or (nil, nil) when absent.
func (r *LearnerRepository) Load(_ context.Context, id string) (*learner.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Save stores a copy of the record.
func (r *LearnerRepository) Save(_ context.Context, rec *learner.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec.Clone()
	return nil
}

// ListIDs returns all stored learner ids, sorted for determinism.
func (r *LearnerRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of stored records.
func (r *LearnerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK LOG
// ══════════════════════════════════════════════════════════════════════════════

// FeedbackLog implements feedback.Log over a slice.
type FeedbackLog struct {
	mu      sync.RWMutex
	entries []*feedback.Entry
}

// NewFeedbackLog creates an empty in-memory feedback log.
func NewFeedbackLog() *FeedbackLog {
	return &FeedbackLog{}
}

// Append stores a copy of the entry.
func (l *FeedbackLog) Append(_ context.Context, e *feedback.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *e
	l.entries = append(l.entries, &copied)
	return nil
}

// ListSince returns entries with Timestamp >= since, oldest first.
func (l *FeedbackLog) ListSince(_ context.Context, since time.Time) ([]*feedback.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*feedback.Entry
	for _, e := range l.entries {
		if since.IsZero() || !e.Timestamp.Before(since) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ListByLearner returns all entries for one learner, oldest first.
func (l *FeedbackLog) ListByLearner(_ context.Context, learnerID string) ([]*feedback.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*feedback.Entry
	for _, e := range l.entries {
		if e.LearnerID == learnerID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}
