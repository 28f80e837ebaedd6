package query

import (
	"context"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/store"
	"github.com/awslearn-hub/tutor-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK INSIGHTS QUERY
// Lifetime vs recent-window trend plus recurring complaint themes mined
// from comments. Built over the full history, unlike the windowed summary.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultInsightsWindowDays is the default recent window for the trend.
const DefaultInsightsWindowDays = 7

// FeedbackInsightsQuery contains the parameters for feedback insights.
type FeedbackInsightsQuery struct {
	// RecentWindowDays is the trailing window compared against the
	// lifetime average. Defaults to DefaultInsightsWindowDays when <= 0.
	RecentWindowDays int

	// Now anchors the recent window (defaults to the current time).
	Now time.Time
}

// FeedbackInsightsHandler handles the FeedbackInsightsQuery.
type FeedbackInsightsHandler struct {
	feedbacks *store.FeedbackStore
}

// NewFeedbackInsightsHandler creates a new FeedbackInsightsHandler.
func NewFeedbackInsightsHandler(feedbacks *store.FeedbackStore) *FeedbackInsightsHandler {
	return &FeedbackInsightsHandler{feedbacks: feedbacks}
}

// Handle executes the feedback insights query.
func (h *FeedbackInsightsHandler) Handle(_ context.Context, q FeedbackInsightsQuery) (*feedback.Insights, error) {
	days := q.RecentWindowDays
	if days <= 0 {
		days = DefaultInsightsWindowDays
	}
	now := q.Now
	if now.IsZero() {
		now = timeutil.Now()
	}

	entries := h.feedbacks.ListSince(time.Time{})
	ins := feedback.AnalyzeInsights(entries, timeutil.WindowStartFrom(now, days), days)
	return &ins, nil
}
