package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

// LearnerRepository implements learner.Repository for SQLite. Records are
// stored as JSON documents, mirroring the PostgreSQL adapter.
type LearnerRepository struct {
	db *sql.DB
}

// Load returns the stored record, or (nil, nil) when absent. An
// unparseable document is reported as a corrupt record.
func (r *LearnerRepository) Load(ctx context.Context, id string) (*learner.Record, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT record FROM learner_records WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: load learner %q: %w", id, err)
	}

	var rec learner.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, shared.WrapError("sqlite", "Load", shared.ErrCorruptRecord,
			fmt.Sprintf("unmarshal learner %q", id), err)
	}
	return &rec, nil
}

// Save upserts the record document.
func (r *LearnerRepository) Save(ctx context.Context, rec *learner.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sqlite: marshal learner %q: %w", rec.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO learner_records (id, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		rec.ID, string(raw), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlite: save learner %q: %w", rec.ID, err)
	}
	return nil
}

// ListIDs returns all stored learner ids.
func (r *LearnerRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM learner_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list learner ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan learner id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate learner ids: %w", err)
	}
	return ids, nil
}
