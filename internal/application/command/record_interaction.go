// Package command contains write operations (CQRS - Commands).
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
// RECORD INTERACTION COMMAND
// Records one question against a topic: appends to the bounded interaction
// log, bumps the lifetime counter, and nudges the topic score toward the
// engagement signal by the EMA rule.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultEMAAlpha is the default learning rate for topic score updates.
const DefaultEMAAlpha = 0.3

// DefaultEngagementSignal is the default asymptote each interaction nudges
// a topic score toward.
const DefaultEngagementSignal = 1.0

// DefaultMasteryThreshold is the score at which a topic counts as mastered.
const DefaultMasteryThreshold = 0.8

// ScoringConfig holds the topic score update tunables.
type ScoringConfig struct {
	// Alpha is the EMA learning rate, in (0,1]. Higher adapts faster to
	// recent engagement.
	Alpha float64

	// EngagementSignal is the target value each interaction nudges the
	// topic score toward.
	EngagementSignal float64

	// MasteryThreshold is the score at which TopicMastered fires. Fires
	// once per upward crossing.
	MasteryThreshold float64
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Alpha:            DefaultEMAAlpha,
		EngagementSignal: DefaultEngagementSignal,
		MasteryThreshold: DefaultMasteryThreshold,
	}
}

// RecordInteractionCommand contains the data to record an interaction.
type RecordInteractionCommand struct {
	// LearnerID is the learner asking the question.
	LearnerID string

	// TopicID is the pre-resolved topic the question was classified into.
	TopicID string

	// QuestionText is the learner's free-form question.
	QuestionText string

	// Timestamp is when the interaction occurred (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordInteractionCommand) Validate() error {
	if !learner.ID(c.LearnerID).IsValid() {
		return learner.ErrInvalidLearnerID
	}
	if strings.TrimSpace(c.TopicID) == "" {
		return learner.ErrInvalidTopicID
	}
	return nil
}

// RecordInteractionResult contains the result of recording an interaction.
type RecordInteractionResult struct {
	// LearnerID is the learner the interaction was recorded for.
	LearnerID string

	// TopicID is the topic the score update applied to.
	TopicID string

	// Score is the topic score after the update.
	Score learner.TopicScore

	// QuestionsAsked is the learner's lifetime question counter.
	QuestionsAsked int

	// Mastered reports whether this update crossed the mastery threshold.
	Mastered bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordInteractionHandler handles the RecordInteractionCommand.
type RecordInteractionHandler struct {
	states    *store.StateStore
	publisher shared.EventPublisher
	scoring   ScoringConfig
}

// NewRecordInteractionHandler creates a new RecordInteractionHandler.
func NewRecordInteractionHandler(states *store.StateStore, publisher shared.EventPublisher, scoring ScoringConfig) *RecordInteractionHandler {
	if scoring.Alpha <= 0 || scoring.Alpha > 1 {
		scoring = DefaultScoringConfig()
	}
	return &RecordInteractionHandler{
		states:    states,
		publisher: publisher,
		scoring:   scoring,
	}
}

// Handle executes the record interaction command.
func (h *RecordInteractionHandler) Handle(ctx context.Context, cmd RecordInteractionCommand) (*RecordInteractionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var (
		score     learner.TopicScore
		wasBelow  bool
		questions int
	)
	rec, err := h.states.Apply(ctx, cmd.LearnerID, func(rec *learner.Record) error {
		wasBelow = rec.Topics[cmd.TopicID].Value < h.scoring.MasteryThreshold
		rec.AppendInteraction(learner.Interaction{
			Timestamp:    at,
			TopicID:      cmd.TopicID,
			QuestionText: cmd.QuestionText,
		}, h.states.Config().MaxLogSize)
		score = rec.ApplyEngagement(cmd.TopicID, h.scoring.Alpha, h.scoring.EngagementSignal, at)
		questions = rec.QuestionsAsked
		return nil
	})
	if err != nil && rec == nil {
		return nil, err
	}

	result := &RecordInteractionResult{
		LearnerID:      cmd.LearnerID,
		TopicID:        cmd.TopicID,
		Score:          score,
		QuestionsAsked: questions,
		Mastered:       wasBelow && score.Value >= h.scoring.MasteryThreshold,
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(ctx, learner.NewInteractionRecordedEvent(
			cmd.LearnerID, cmd.TopicID, cmd.QuestionText, score))
		if result.Mastered {
			_ = h.publisher.Publish(ctx, learner.NewTopicMasteredEvent(
				cmd.LearnerID, cmd.TopicID, score.Value))
		}
	}

	// err is non-nil here only for a persistence failure after the
	// in-memory commit; surface it alongside the committed result.
	return result, err
}
