package learner

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERSISTENCE PORT
// The store keeps the authoritative copy of every record in memory; this
// interface is the durable key→record backing behind it. Implementations
// live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the durable key→record storage for learner records.
type Repository interface {
	// Load returns the record for a learner id, or (nil, nil) when no
	// record has ever been persisted for that id. A stored record that
	// cannot be decoded is reported via shared.ErrCorruptRecord; callers
	// treat that the same as absence.
	Load(ctx context.Context, id string) (*Record, error)

	// Save durably stores the record under its learner id, replacing any
	// previous version.
	Save(ctx context.Context, rec *Record) error

	// ListIDs returns every learner id with a persisted record. Used to
	// warm the in-memory store and for cross-learner statistics.
	ListIDs(ctx context.Context) ([]string, error)
}
