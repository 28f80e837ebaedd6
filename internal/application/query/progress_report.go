// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPORT QUERY
// Read-only view of one learner's record. Unseen ids get a fresh default
// report; the read never creates a persisted record.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressReportQuery contains the parameters for a progress report.
type ProgressReportQuery struct {
	// LearnerID is the learner to report on.
	LearnerID string
}

// Validate validates the query.
func (q ProgressReportQuery) Validate() error {
	if !learner.ID(q.LearnerID).IsValid() {
		return learner.ErrInvalidLearnerID
	}
	return nil
}

// ProgressReportDTO is the read model for one learner's progress.
type ProgressReportDTO struct {
	// LearnerID is the learner the report covers.
	LearnerID string `json:"learner_id"`

	// Topics maps topic id to its running competence score.
	Topics map[string]learner.TopicScore `json:"topics"`

	// LabsCompleted lists completed lab ids.
	LabsCompleted []string `json:"labs_completed"`

	// QuestionsAsked is the lifetime interaction counter.
	QuestionsAsked int `json:"questions_asked"`

	// RecentInteractions is the bounded interaction log, oldest first.
	RecentInteractions []learner.Interaction `json:"recent_interactions"`

	// AverageTopicScore is the mean of all topic score values.
	AverageTopicScore float64 `json:"average_topic_score"`

	// TimeSpent is the accumulated reported session time.
	TimeSpent time.Duration `json:"time_spent"`

	// LastActive is when the learner last mutated state (zero if never).
	LastActive time.Time `json:"last_active"`
}

// ProgressReportHandler handles the ProgressReportQuery.
type ProgressReportHandler struct {
	states *store.StateStore
}

// NewProgressReportHandler creates a new ProgressReportHandler.
func NewProgressReportHandler(states *store.StateStore) *ProgressReportHandler {
	return &ProgressReportHandler{states: states}
}

// Handle executes the progress report query.
func (h *ProgressReportHandler) Handle(ctx context.Context, q ProgressReportQuery) (*ProgressReportDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.states.Snapshot(ctx, q.LearnerID)
	if err != nil {
		return nil, err
	}

	labs := make([]string, 0, len(rec.LabsCompleted))
	for id := range rec.LabsCompleted {
		labs = append(labs, id)
	}

	return &ProgressReportDTO{
		LearnerID:          rec.ID,
		Topics:             rec.Topics,
		LabsCompleted:      labs,
		QuestionsAsked:     rec.QuestionsAsked,
		RecentInteractions: rec.InteractionLog,
		AverageTopicScore:  rec.AverageTopicScore(),
		TimeSpent:          rec.TimeSpent,
		LastActive:         rec.LastActive,
	}, nil
}
