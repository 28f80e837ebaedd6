package query

import (
	"context"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/store"
	"github.com/awslearn-hub/tutor-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK SUMMARY QUERY
// Windowed aggregation of feedback: count, average rating, 1..5 histogram,
// frequency-ranked categories.
// ══════════════════════════════════════════════════════════════════════════════

// FeedbackSummaryQuery contains the parameters for a feedback summary.
type FeedbackSummaryQuery struct {
	// Days is the trailing window in whole days. Must be positive.
	Days int

	// Now anchors the window (defaults to the current time). Settable
	// for deterministic tests.
	Now time.Time
}

// Validate validates the query.
func (q FeedbackSummaryQuery) Validate() error {
	if q.Days <= 0 {
		return feedback.ErrInvalidWindow
	}
	return nil
}

// FeedbackSummaryHandler handles the FeedbackSummaryQuery.
type FeedbackSummaryHandler struct {
	feedbacks *store.FeedbackStore
}

// NewFeedbackSummaryHandler creates a new FeedbackSummaryHandler.
func NewFeedbackSummaryHandler(feedbacks *store.FeedbackStore) *FeedbackSummaryHandler {
	return &FeedbackSummaryHandler{feedbacks: feedbacks}
}

// Handle executes the feedback summary query.
func (h *FeedbackSummaryHandler) Handle(_ context.Context, q FeedbackSummaryQuery) (*feedback.Summary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := q.Now
	if now.IsZero() {
		now = timeutil.Now()
	}
	since := timeutil.WindowStartFrom(now, q.Days)

	entries := h.feedbacks.ListSince(since)
	summary := feedback.Summarize(entries, q.Days)
	return &summary, nil
}
