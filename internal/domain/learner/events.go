package learner

import (
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// Published on the in-process bus after a mutation commits, so collaborators
// (the conversational layer, analytics) can react without polling.
// ══════════════════════════════════════════════════════════════════════════════

// InteractionRecordedEvent - a question was recorded against a topic.
type InteractionRecordedEvent struct {
	shared.BaseEvent
	TopicID  string
	Score    TopicScore
	Question string
}

// NewInteractionRecordedEvent creates the event for a recorded interaction.
func NewInteractionRecordedEvent(learnerID, topicID, question string, score TopicScore) InteractionRecordedEvent {
	return InteractionRecordedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventInteractionRecorded, learnerID),
		TopicID:   topicID,
		Score:     score,
		Question:  question,
	}
}

// LabCompletedEvent - a lab was completed for the first time.
type LabCompletedEvent struct {
	shared.BaseEvent
	LabID string
}

// NewLabCompletedEvent creates the event for a newly completed lab.
func NewLabCompletedEvent(learnerID, labID string) LabCompletedEvent {
	return LabCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLabCompleted, learnerID),
		LabID:     labID,
	}
}

// SessionTimeRecordedEvent - a session duration was reported.
type SessionTimeRecordedEvent struct {
	shared.BaseEvent
	Duration  time.Duration
	TotalTime time.Duration
}

// NewSessionTimeRecordedEvent creates the event for a reported session.
func NewSessionTimeRecordedEvent(learnerID string, d, total time.Duration) SessionTimeRecordedEvent {
	return SessionTimeRecordedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventSessionTimeRecorded, learnerID),
		Duration:  d,
		TotalTime: total,
	}
}

// TopicMasteredEvent - a topic score crossed the mastery threshold.
type TopicMasteredEvent struct {
	shared.BaseEvent
	TopicID string
	Score   float64
}

// NewTopicMasteredEvent creates the event for a topic crossing the
// mastery threshold.
func NewTopicMasteredEvent(learnerID, topicID string, score float64) TopicMasteredEvent {
	return TopicMasteredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventTopicMastered, learnerID),
		TopicID:   topicID,
		Score:     score,
	}
}
