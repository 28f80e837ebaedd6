package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
)

// timeLayout is fixed width so timestamp strings compare and sort the way
// the times themselves do. RFC3339Nano trims trailing zeros and breaks
// lexicographic ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FeedbackLog implements feedback.Log for SQLite.
type FeedbackLog struct {
	db *sql.DB
}

// Append inserts the entry.
func (l *FeedbackLog) Append(ctx context.Context, e *feedback.Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO feedback_entries (id, learner_id, submitted_at, rating, comment, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.LearnerID, e.Timestamp.UTC().Format(timeLayout),
		e.Rating, e.Comment, e.Category)
	if err != nil {
		return fmt.Errorf("sqlite: append feedback %q: %w", e.ID, err)
	}
	return nil
}

// ListSince returns entries with submitted_at >= since, oldest first.
func (l *FeedbackLog) ListSince(ctx context.Context, since time.Time) ([]*feedback.Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, learner_id, submitted_at, rating, comment, category
		FROM feedback_entries
		WHERE submitted_at >= ?
		ORDER BY submitted_at ASC`,
		since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list feedback: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByLearner returns all entries for one learner, oldest first.
func (l *FeedbackLog) ListByLearner(ctx context.Context, learnerID string) ([]*feedback.Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, learner_id, submitted_at, rating, comment, category
		FROM feedback_entries
		WHERE learner_id = ?
		ORDER BY submitted_at ASC`,
		learnerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list feedback for learner %q: %w", learnerID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*feedback.Entry, error) {
	var entries []*feedback.Entry
	for rows.Next() {
		var (
			e  feedback.Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.LearnerID, &ts, &e.Rating, &e.Comment, &e.Category); err != nil {
			return nil, fmt.Errorf("sqlite: scan feedback entry: %w", err)
		}
		parsed, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse feedback timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate feedback entries: %w", err)
	}
	return entries, nil
}
