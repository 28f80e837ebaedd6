package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository for PostgreSQL. The whole
// record is stored as one JSONB document: the store always writes full
// records and never queries inside them, so a document beats a wide table.
type LearnerRepository struct {
	conn *Connection
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(conn *Connection) *LearnerRepository {
	return &LearnerRepository{conn: conn}
}

// Load returns the stored record, or (nil, nil) when absent. A document
// that fails to unmarshal is reported as a corrupt record so the store can
// treat it as absence.
func (r *LearnerRepository) Load(ctx context.Context, id string) (*learner.Record, error) {
	query := `SELECT record FROM learner_records WHERE id = $1`

	var raw []byte
	err := r.conn.QueryRow(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to load learner %q: %w", id, err)
	}

	var rec learner.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, shared.WrapError("postgres", "Load", shared.ErrCorruptRecord,
			fmt.Sprintf("unmarshal learner %q", id), err)
	}
	return &rec, nil
}

// Save upserts the record document.
func (r *LearnerRepository) Save(ctx context.Context, rec *learner.Record) error {
	query := `
		INSERT INTO learner_records (id, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET record = $2, updated_at = $3
	`

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal learner %q: %w", rec.ID, err)
	}

	if _, err := r.conn.Exec(ctx, query, rec.ID, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("postgres: failed to save learner %q: %w", rec.ID, err)
	}
	return nil
}

// ListIDs returns all stored learner ids.
func (r *LearnerRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM learner_records ORDER BY id`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list learner ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan learner id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate learner ids: %w", err)
	}
	return ids, nil
}
