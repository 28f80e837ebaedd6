package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD FEEDBACK COMMAND
// Appends a validated, immutable feedback entry. Validation rejects the
// whole submission before any state changes; there are no partial writes.
// ══════════════════════════════════════════════════════════════════════════════

// RecordFeedbackCommand contains the data to record feedback.
type RecordFeedbackCommand struct {
	// LearnerID is the learner submitting the feedback.
	LearnerID string

	// Rating is the satisfaction score on the 1-5 scale.
	Rating int

	// Comment is optional free-form text.
	Comment string

	// Category is an optional tag (e.g. "lab", "explanation").
	Category string
}

// RecordFeedbackResult contains the result of recording feedback.
type RecordFeedbackResult struct {
	// Entry is the stored feedback entry.
	Entry *feedback.Entry
}

// RecordFeedbackHandler handles the RecordFeedbackCommand.
type RecordFeedbackHandler struct {
	feedbacks *store.FeedbackStore
	publisher shared.EventPublisher
}

// NewRecordFeedbackHandler creates a new RecordFeedbackHandler.
func NewRecordFeedbackHandler(feedbacks *store.FeedbackStore, publisher shared.EventPublisher) *RecordFeedbackHandler {
	return &RecordFeedbackHandler{feedbacks: feedbacks, publisher: publisher}
}

// Handle executes the record feedback command.
func (h *RecordFeedbackHandler) Handle(ctx context.Context, cmd RecordFeedbackCommand) (*RecordFeedbackResult, error) {
	entry, err := feedback.NewEntry(feedback.NewEntryParams{
		ID:        uuid.NewString(),
		LearnerID: cmd.LearnerID,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		Category:  cmd.Category,
	})
	if err != nil {
		return nil, err
	}

	// Storage errors surface with the entry retained in memory, same
	// contract as learner record mutations.
	storeErr := h.feedbacks.Append(ctx, entry)

	if h.publisher != nil {
		_ = h.publisher.Publish(ctx, feedback.NewReceivedEvent(entry))
	}

	return &RecordFeedbackResult{Entry: entry}, storeErr
}
