package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK LOG IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FeedbackRepository implements feedback.Log for PostgreSQL. Entries go
// into a flat table indexed by submission time, so windowed aggregation
// queries stay cheap as the history grows.
type FeedbackRepository struct {
	conn *Connection
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(conn *Connection) *FeedbackRepository {
	return &FeedbackRepository{conn: conn}
}

// Append inserts the entry. Entries are immutable; there is no update path.
func (r *FeedbackRepository) Append(ctx context.Context, e *feedback.Entry) error {
	query := `
		INSERT INTO feedback_entries (id, learner_id, submitted_at, rating, comment, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.LearnerID,
		e.Timestamp,
		e.Rating,
		e.Comment,
		e.Category,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to append feedback %q: %w", e.ID, err)
	}
	return nil
}

// ListSince returns entries with submitted_at >= since, oldest first.
func (r *FeedbackRepository) ListSince(ctx context.Context, since time.Time) ([]*feedback.Entry, error) {
	query := `
		SELECT id, learner_id, submitted_at, rating, comment, category
		FROM feedback_entries
		WHERE submitted_at >= $1
		ORDER BY submitted_at ASC
	`

	rows, err := r.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list feedback: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByLearner returns all entries for one learner, oldest first.
func (r *FeedbackRepository) ListByLearner(ctx context.Context, learnerID string) ([]*feedback.Entry, error) {
	query := `
		SELECT id, learner_id, submitted_at, rating, comment, category
		FROM feedback_entries
		WHERE learner_id = $1
		ORDER BY submitted_at ASC
	`

	rows, err := r.conn.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list feedback for learner %q: %w", learnerID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*feedback.Entry, error) {
	var entries []*feedback.Entry
	for rows.Next() {
		var e feedback.Entry
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.Timestamp, &e.Rating, &e.Comment, &e.Category); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan feedback entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate feedback entries: %w", err)
	}
	return entries, nil
}
