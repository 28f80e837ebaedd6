// Package feedback contains the domain model for learner satisfaction
// feedback: immutable rated entries and their windowed aggregates.
package feedback

import (
	"strings"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

// Rating bounds for a feedback entry.
const (
	MinRating = 1
	MaxRating = 5
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one piece of learner feedback. Entries are immutable once created
// and retained for the lifetime of the store - aggregation needs arbitrary
// historical windows, so there is no eviction.
type Entry struct {
	// ID is a unique entry identifier (UUID).
	ID string `json:"id"`

	// LearnerID is the learner who submitted the feedback.
	LearnerID string `json:"learner_id"`

	// Timestamp is when the feedback was submitted.
	Timestamp time.Time `json:"timestamp"`

	// Rating is the satisfaction score on the 1-5 scale.
	Rating int `json:"rating"`

	// Comment is optional free-form text.
	Comment string `json:"comment,omitempty"`

	// Category is an optional tag (e.g. "lab", "explanation").
	Category string `json:"category,omitempty"`
}

// NewEntryParams contains the parameters for creating a feedback entry.
type NewEntryParams struct {
	ID        string
	LearnerID string
	Rating    int
	Comment   string
	Category  string
}

// NewEntry creates a validated, timestamped feedback entry. Validation
// happens before anything is stored: an out-of-range rating rejects the
// whole submission with no partial writes.
func NewEntry(params NewEntryParams) (*Entry, error) {
	if strings.TrimSpace(params.LearnerID) == "" {
		return nil, ErrInvalidLearnerID
	}
	if params.Rating < MinRating || params.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	return &Entry{
		ID:        params.ID,
		LearnerID: params.LearnerID,
		Timestamp: time.Now().UTC(),
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		Category:  strings.TrimSpace(params.Category),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ReceivedEvent - a feedback entry was accepted and stored.
type ReceivedEvent struct {
	shared.BaseEvent
	EntryID  string
	Rating   int
	Category string
}

// NewReceivedEvent creates the event for an accepted feedback entry.
func NewReceivedEvent(e *Entry) ReceivedEvent {
	return ReceivedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventFeedbackReceived, e.LearnerID),
		EntryID:   e.ID,
		Rating:    e.Rating,
		Category:  e.Category,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidRating - rating outside the 1-5 scale.
	ErrInvalidRating = shared.NewDomainError("feedback", "Validate", shared.ErrValueOutOfRange, "rating must be between 1 and 5")

	// ErrInvalidLearnerID - learner id is empty or blank.
	ErrInvalidLearnerID = shared.NewDomainError("feedback", "Validate", shared.ErrEmptyValue, "learner id must be non-empty")

	// ErrInvalidWindow - aggregation window must cover at least one day.
	ErrInvalidWindow = shared.NewDomainError("feedback", "Validate", shared.ErrValueOutOfRange, "window days must be positive")
)
