package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const migrationLearnerRecords = `
CREATE TABLE IF NOT EXISTS learner_records (
    id TEXT PRIMARY KEY,
    record JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_learner_records_updated_at ON learner_records(updated_at);
`

const migrationFeedbackEntries = `
CREATE TABLE IF NOT EXISTS feedback_entries (
    id UUID PRIMARY KEY,
    learner_id TEXT NOT NULL,
    submitted_at TIMESTAMP WITH TIME ZONE NOT NULL,
    rating SMALLINT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',

    CONSTRAINT valid_rating CHECK (rating >= 1 AND rating <= 5)
);

CREATE INDEX IF NOT EXISTS idx_feedback_entries_submitted_at ON feedback_entries(submitted_at);
CREATE INDEX IF NOT EXISTS idx_feedback_entries_learner_id ON feedback_entries(learner_id, submitted_at);
`

// Migrate applies the engine schema. Statements are idempotent, so running
// on every startup is safe.
func Migrate(ctx context.Context, conn *Connection) error {
	for _, stmt := range []string{migrationLearnerRecords, migrationFeedbackEntries} {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migration failed: %w", err)
		}
	}
	return nil
}
