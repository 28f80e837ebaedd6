package command

import (
	"context"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD SESSION TIME COMMAND
// Accumulates an externally reported session duration onto the learner's
// lifetime total. Durations are supplied by the conversational layer; the
// engine does not measure sessions itself.
// ══════════════════════════════════════════════════════════════════════════════

// RecordSessionTimeCommand contains the data to record session time.
type RecordSessionTimeCommand struct {
	// LearnerID is the learner who spent the time.
	LearnerID string

	// Duration is the reported session length. Must be non-negative.
	Duration time.Duration

	// Timestamp is when the session ended (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordSessionTimeCommand) Validate() error {
	if !learner.ID(c.LearnerID).IsValid() {
		return learner.ErrInvalidLearnerID
	}
	if c.Duration < 0 {
		return learner.ErrNegativeDuration
	}
	return nil
}

// RecordSessionTimeResult contains the result of recording session time.
type RecordSessionTimeResult struct {
	// LearnerID is the learner the time was recorded for.
	LearnerID string

	// Added is the duration recorded by this call.
	Added time.Duration

	// TotalTimeSpent is the lifetime total after the call.
	TotalTimeSpent time.Duration
}

// RecordSessionTimeHandler handles the RecordSessionTimeCommand.
type RecordSessionTimeHandler struct {
	states    *store.StateStore
	publisher shared.EventPublisher
}

// NewRecordSessionTimeHandler creates a new RecordSessionTimeHandler.
func NewRecordSessionTimeHandler(states *store.StateStore, publisher shared.EventPublisher) *RecordSessionTimeHandler {
	return &RecordSessionTimeHandler{states: states, publisher: publisher}
}

// Handle executes the record session time command.
func (h *RecordSessionTimeHandler) Handle(ctx context.Context, cmd RecordSessionTimeCommand) (*RecordSessionTimeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var total time.Duration
	rec, err := h.states.Apply(ctx, cmd.LearnerID, func(rec *learner.Record) error {
		rec.AddSessionTime(cmd.Duration, at)
		total = rec.TimeSpent
		return nil
	})
	if err != nil && rec == nil {
		return nil, err
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(ctx, learner.NewSessionTimeRecordedEvent(cmd.LearnerID, cmd.Duration, total))
	}

	return &RecordSessionTimeResult{
		LearnerID:      cmd.LearnerID,
		Added:          cmd.Duration,
		TotalTimeSpent: total,
	}, err
}
