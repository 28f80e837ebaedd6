package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/awslearn-hub/tutor-core/internal/application/command"
	"github.com/awslearn-hub/tutor-core/internal/application/query"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/infrastructure/persistence/memory"
)

func newTestEngine() (*Engine, *memory.LearnerRepository) {
	repo := memory.NewLearnerRepository()
	return NewEngine(repo, memory.NewFeedbackLog(), Options{}), repo
}

func TestEngine_InteractionToReportRoundTrip(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := eng.RecordInteraction(ctx, command.RecordInteractionCommand{
			LearnerID:    "alice",
			TopicID:      "ec2",
			QuestionText: "how do security groups work?",
		})
		assert.NoError(t, err)
	}
	_, err := eng.MarkLabComplete(ctx, command.MarkLabCompleteCommand{LearnerID: "alice", LabID: "lab-1"})
	assert.NoError(t, err)
	_, err = eng.RecordSessionTime(ctx, command.RecordSessionTimeCommand{LearnerID: "alice", Duration: 20 * time.Minute})
	assert.NoError(t, err)

	report, err := eng.ProgressReport(ctx, query.ProgressReportQuery{LearnerID: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, 3, report.QuestionsAsked)
	assert.Equal(t, []string{"lab-1"}, report.LabsCompleted)
	assert.Equal(t, 20*time.Minute, report.TimeSpent)
	assert.Equal(t, 3, report.Topics["ec2"].Visits)
}

func TestEngine_FeedbackRoundTrip(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	_, err := eng.RecordFeedback(ctx, command.RecordFeedbackCommand{LearnerID: "alice", Rating: 5, Category: "lab"})
	assert.NoError(t, err)
	_, err = eng.RecordFeedback(ctx, command.RecordFeedbackCommand{LearnerID: "bob", Rating: 4})
	assert.NoError(t, err)

	summary, err := eng.FeedbackSummary(ctx, query.FeedbackSummaryQuery{Days: 7})
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	if assert.NotNil(t, summary.AverageRating) {
		assert.InDelta(t, 4.5, *summary.AverageRating, 1e-9)
	}

	history, err := eng.FeedbackHistory(ctx, query.FeedbackHistoryQuery{LearnerID: "alice"})
	assert.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEngine_SubscribeReceivesEvents(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	var got []shared.Event
	err := eng.Subscribe(shared.EventLabCompleted, func(_ context.Context, e shared.Event) error {
		got = append(got, e)
		return nil
	})
	assert.NoError(t, err)

	_, err = eng.MarkLabComplete(ctx, command.MarkLabCompleteCommand{LearnerID: "alice", LabID: "lab-1"})
	assert.NoError(t, err)
	_, err = eng.MarkLabComplete(ctx, command.MarkLabCompleteCommand{LearnerID: "alice", LabID: "lab-1"})
	assert.NoError(t, err)

	// Synchronous bus: the event arrived before Handle returned, and the
	// idempotent repeat produced no second event.
	assert.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].AggregateID())
}

func TestEngine_ActiveWindowOptionAppliesToStats(t *testing.T) {
	repo := memory.NewLearnerRepository()
	eng := NewEngine(repo, memory.NewFeedbackLog(), Options{ActiveWindowDays: 30})
	ctx := context.Background()

	_, err := eng.RecordInteraction(ctx, command.RecordInteractionCommand{
		LearnerID: "alice",
		TopicID:   "ec2",
		Timestamp: time.Now().UTC().Add(-10 * 24 * time.Hour),
	})
	assert.NoError(t, err)

	// Unset query window resolves to the configured 30 days, not the
	// 7-day package default, so a ten-day-old learner counts as active.
	stats, err := eng.GlobalStats(ctx, query.GlobalStatsQuery{})
	assert.NoError(t, err)
	assert.Equal(t, 30, stats.ActiveWindowDays)
	assert.Equal(t, 1, stats.ActiveLearners)
}

func TestEngine_WarmUpRestoresState(t *testing.T) {
	repo := memory.NewLearnerRepository()
	flog := memory.NewFeedbackLog()
	ctx := context.Background()

	first := NewEngine(repo, flog, Options{})
	_, err := first.RecordInteraction(ctx, command.RecordInteractionCommand{LearnerID: "alice", TopicID: "ec2"})
	assert.NoError(t, err)
	_, err = first.RecordFeedback(ctx, command.RecordFeedbackCommand{LearnerID: "alice", Rating: 5})
	assert.NoError(t, err)
	assert.NoError(t, first.Close())

	// A fresh engine over the same persistence sees the full population
	// after warm-up.
	second := NewEngine(repo, flog, Options{})
	assert.NoError(t, second.WarmUp(ctx))

	stats, err := second.GlobalStats(ctx, query.GlobalStatsQuery{})
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLearners)
	assert.Equal(t, 1, stats.TotalInteractions)

	summary, err := second.FeedbackSummary(ctx, query.FeedbackSummaryQuery{Days: 7})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
}
