package feedback

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERSISTENCE PORT
// ══════════════════════════════════════════════════════════════════════════════

// Log is the durable append-only storage for feedback entries.
// Implementations live in infrastructure/persistence.
type Log interface {
	// Append durably stores a new entry. Entries are never updated or
	// deleted afterwards.
	Append(ctx context.Context, e *Entry) error

	// ListSince returns entries with Timestamp >= since, oldest first.
	// A zero since returns the full history.
	ListSince(ctx context.Context, since time.Time) ([]*Entry, error)

	// ListByLearner returns all entries for one learner, oldest first.
	ListByLearner(ctx context.Context, learnerID string) ([]*Entry, error)
}
