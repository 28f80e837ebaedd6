package query

import (
	"context"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK HISTORY QUERY
// All feedback entries for one learner, oldest first, optionally limited
// to the most recent N.
// ══════════════════════════════════════════════════════════════════════════════

// FeedbackHistoryQuery contains the parameters for a learner's feedback
// history.
type FeedbackHistoryQuery struct {
	// LearnerID is the learner whose history to list.
	LearnerID string

	// Limit caps the result to the most recent entries. <= 0 means all.
	Limit int
}

// Validate validates the query.
func (q FeedbackHistoryQuery) Validate() error {
	if q.LearnerID == "" {
		return feedback.ErrInvalidLearnerID
	}
	return nil
}

// FeedbackHistoryHandler handles the FeedbackHistoryQuery.
type FeedbackHistoryHandler struct {
	feedbacks *store.FeedbackStore
}

// NewFeedbackHistoryHandler creates a new FeedbackHistoryHandler.
func NewFeedbackHistoryHandler(feedbacks *store.FeedbackStore) *FeedbackHistoryHandler {
	return &FeedbackHistoryHandler{feedbacks: feedbacks}
}

// Handle executes the feedback history query.
func (h *FeedbackHistoryHandler) Handle(_ context.Context, q FeedbackHistoryQuery) ([]*feedback.Entry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	entries := h.feedbacks.ListByLearner(q.LearnerID)
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[len(entries)-q.Limit:]
	}
	return entries, nil
}
