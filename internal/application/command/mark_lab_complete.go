package command

import (
	"context"
	"strings"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK LAB COMPLETE COMMAND
// Idempotent insertion into the learner's completed-lab set. Completing a
// lab twice is a no-op, not an error.
// ══════════════════════════════════════════════════════════════════════════════

// MarkLabCompleteCommand contains the data to mark a lab complete.
type MarkLabCompleteCommand struct {
	// LearnerID is the learner who completed the lab.
	LearnerID string

	// LabID is the completed lab.
	LabID string

	// Timestamp is when the lab was completed (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c MarkLabCompleteCommand) Validate() error {
	if !learner.ID(c.LearnerID).IsValid() {
		return learner.ErrInvalidLearnerID
	}
	if strings.TrimSpace(c.LabID) == "" {
		return learner.ErrInvalidLabID
	}
	return nil
}

// MarkLabCompleteResult contains the result of marking a lab complete.
type MarkLabCompleteResult struct {
	// LearnerID is the learner the lab was recorded for.
	LearnerID string

	// LabID is the lab that was marked.
	LabID string

	// NewlyCompleted is false when the lab was already in the set.
	NewlyCompleted bool

	// TotalCompleted is the size of the completed-lab set after the call.
	TotalCompleted int
}

// MarkLabCompleteHandler handles the MarkLabCompleteCommand.
type MarkLabCompleteHandler struct {
	states    *store.StateStore
	publisher shared.EventPublisher
}

// NewMarkLabCompleteHandler creates a new MarkLabCompleteHandler.
func NewMarkLabCompleteHandler(states *store.StateStore, publisher shared.EventPublisher) *MarkLabCompleteHandler {
	return &MarkLabCompleteHandler{states: states, publisher: publisher}
}

// Handle executes the mark lab complete command.
func (h *MarkLabCompleteHandler) Handle(ctx context.Context, cmd MarkLabCompleteCommand) (*MarkLabCompleteResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var (
		newly bool
		total int
	)
	rec, err := h.states.Apply(ctx, cmd.LearnerID, func(rec *learner.Record) error {
		newly = rec.CompleteLab(cmd.LabID, at)
		total = len(rec.LabsCompleted)
		return nil
	})
	if err != nil && rec == nil {
		return nil, err
	}

	if h.publisher != nil && newly {
		_ = h.publisher.Publish(ctx, learner.NewLabCompletedEvent(cmd.LearnerID, cmd.LabID))
	}

	return &MarkLabCompleteResult{
		LearnerID:      cmd.LearnerID,
		LabID:          cmd.LabID,
		NewlyCompleted: newly,
		TotalCompleted: total,
	}, err
}
