// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the engine and that collaborators (the conversational layer,
// analytics) may want to react to.
const (
	// Progress events
	EventInteractionRecorded EventType = "progress.interaction_recorded"
	EventLabCompleted        EventType = "progress.lab_completed"
	EventSessionTimeRecorded EventType = "progress.session_time_recorded"
	EventTopicMastered       EventType = "progress.topic_mastered"

	// Feedback events
	EventFeedbackReceived EventType = "feedback.received"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the learner id the event belongs to.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	LearnerID string    `json:"learner_id"`
}

// EventType returns the type of the event.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the learner id the event belongs to.
func (e BaseEvent) AggregateID() string { return e.LearnerID }

// NewBaseEvent creates a BaseEvent stamped with the current UTC time.
func NewBaseEvent(t EventType, learnerID string) BaseEvent {
	return BaseEvent{
		Type:      t,
		Timestamp: time.Now().UTC(),
		LearnerID: learnerID,
	}
}

// EventPublisher delivers domain events to subscribers. The in-process bus
// in infrastructure/messaging is the default implementation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventHandler processes a published event. Handlers must be safe for
// concurrent use; a handler error is logged by the bus, never propagated
// back to the publisher.
type EventHandler func(ctx context.Context, event Event) error
