package query

import (
	"context"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/store"
	"github.com/awslearn-hub/tutor-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GLOBAL STATS QUERY
// Cross-learner aggregates computed from a point-in-time scan of the state
// store. Strict cross-learner atomicity is not needed for statistics.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultActiveWindowDays is the default trailing window for counting a
// learner as active.
const DefaultActiveWindowDays = 7

// GlobalStatsQuery contains the parameters for global statistics.
type GlobalStatsQuery struct {
	// ActiveWindowDays is the trailing window for the active-learner
	// count. When <= 0 the handler's configured default applies.
	ActiveWindowDays int

	// Now anchors the active window (defaults to the current time).
	// Settable for deterministic tests.
	Now time.Time
}

// GlobalStatsDTO is the read model for cross-learner statistics.
type GlobalStatsDTO struct {
	// TotalLearners is the number of learners known to the store.
	TotalLearners int `json:"total_learners"`

	// ActiveLearners is how many learners mutated state inside the
	// trailing active window.
	ActiveLearners int `json:"active_learners"`

	// ActiveWindowDays is the window ActiveLearners was computed over.
	ActiveWindowDays int `json:"active_window_days"`

	// AvgTopicScore is the mean of all learners' average topic scores.
	// Learners with no topics contribute zero.
	AvgTopicScore float64 `json:"avg_topic_score"`

	// LabCompletionRate is the share of known learners with at least one
	// completed lab.
	LabCompletionRate float64 `json:"lab_completion_rate"`

	// TotalInteractions sums the lifetime question counters of all
	// learners.
	TotalInteractions int `json:"total_interactions"`

	// TotalLabsCompleted sums completed-lab set sizes across learners.
	TotalLabsCompleted int `json:"total_labs_completed"`
}

// GlobalStatsHandler handles the GlobalStatsQuery.
type GlobalStatsHandler struct {
	states      *store.StateStore
	defaultDays int
}

// NewGlobalStatsHandler creates a new GlobalStatsHandler. defaultWindowDays
// is the active window applied when a query does not set one; values <= 0
// fall back to DefaultActiveWindowDays.
func NewGlobalStatsHandler(states *store.StateStore, defaultWindowDays int) *GlobalStatsHandler {
	if defaultWindowDays <= 0 {
		defaultWindowDays = DefaultActiveWindowDays
	}
	return &GlobalStatsHandler{states: states, defaultDays: defaultWindowDays}
}

// Handle executes the global stats query.
func (h *GlobalStatsHandler) Handle(_ context.Context, q GlobalStatsQuery) (*GlobalStatsDTO, error) {
	days := q.ActiveWindowDays
	if days <= 0 {
		days = h.defaultDays
	}
	now := q.Now
	if now.IsZero() {
		now = timeutil.Now()
	}
	cutoff := timeutil.WindowStartFrom(now, days)

	stats := &GlobalStatsDTO{ActiveWindowDays: days}
	var scoreSum float64
	var withLabs int

	h.states.ForEach(func(rec *learner.Record) {
		stats.TotalLearners++
		if rec.ActiveSince(cutoff) {
			stats.ActiveLearners++
		}
		scoreSum += rec.AverageTopicScore()
		stats.TotalInteractions += rec.QuestionsAsked
		stats.TotalLabsCompleted += len(rec.LabsCompleted)
		if len(rec.LabsCompleted) > 0 {
			withLabs++
		}
	})

	if stats.TotalLearners > 0 {
		stats.AvgTopicScore = scoreSum / float64(stats.TotalLearners)
		stats.LabCompletionRate = float64(withLabs) / float64(stats.TotalLearners)
	}
	return stats, nil
}
