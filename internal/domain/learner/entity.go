// Package learner contains the domain model for a learner's durable state:
// per-topic competence scores, completed labs, the bounded interaction log,
// and lifetime counters. This is the core of the engine - no external
// dependencies live here.
package learner

import (
	"sort"
	"strings"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID is the unique, case-sensitive learner identifier.
type ID string

// IsValid checks that the id is non-empty after trimming.
func (id ID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// String returns the string form of the id.
func (id ID) String() string { return string(id) }

// TopicScore is the running competence estimate for one topic.
type TopicScore struct {
	// Value is the competence estimate, always kept in [0,1].
	Value float64 `json:"value"`

	// LastUpdated is when the score last changed.
	LastUpdated time.Time `json:"last_updated"`

	// Visits counts interactions recorded against this topic.
	Visits int `json:"visits"`
}

// Interaction is one entry of the bounded interaction log.
type Interaction struct {
	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`

	// TopicID is the pre-resolved topic the question was classified into.
	TopicID string `json:"topic_id"`

	// QuestionText is the learner's free-form question.
	QuestionText string `json:"question_text"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is the full durable state for one learner. Records are created
// lazily on first mutation and mutated only through the state store's
// serialized-update primitive.
type Record struct {
	// ID is the learner identifier (case-sensitive, unique in the store).
	ID string `json:"id"`

	// Topics maps topic id to its running competence score.
	Topics map[string]TopicScore `json:"topics"`

	// LabsCompleted is the set of completed lab ids. Membership only,
	// grows monotonically, never removed.
	LabsCompleted map[string]bool `json:"labs_completed"`

	// InteractionLog holds the most recent interactions in arrival order,
	// bounded by the configured capacity. Oldest entries are evicted first.
	InteractionLog []Interaction `json:"interaction_log"`

	// QuestionsAsked is the lifetime interaction counter. It is independent
	// of log eviction: the log is a recency window, this is the total.
	QuestionsAsked int `json:"questions_asked"`

	// TimeSpent accumulates explicitly reported session durations.
	TimeSpent time.Duration `json:"time_spent"`

	// LastActive is the timestamp of the most recent mutation.
	LastActive time.Time `json:"last_active"`

	// CreatedAt is when the record was first created.
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord creates a fresh record for a learner with all numeric fields
// zeroed and empty containers.
func NewRecord(id string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:             id,
		Topics:         make(map[string]TopicScore),
		LabsCompleted:  make(map[string]bool),
		InteractionLog: make([]Interaction, 0),
		CreatedAt:      now,
	}
}

// Normalize initializes nil containers on a record loaded from persistence.
func (r *Record) Normalize() {
	if r.Topics == nil {
		r.Topics = make(map[string]TopicScore)
	}
	if r.LabsCompleted == nil {
		r.LabsCompleted = make(map[string]bool)
	}
	if r.InteractionLog == nil {
		r.InteractionLog = make([]Interaction, 0)
	}
}

// Clone creates a deep copy of the record. Snapshot reads hand out clones so
// the live record is never exposed to callers.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Topics = make(map[string]TopicScore, len(r.Topics))
	for id, ts := range r.Topics {
		clone.Topics[id] = ts
	}
	clone.LabsCompleted = make(map[string]bool, len(r.LabsCompleted))
	for id := range r.LabsCompleted {
		clone.LabsCompleted[id] = true
	}
	clone.InteractionLog = make([]Interaction, len(r.InteractionLog))
	copy(clone.InteractionLog, r.InteractionLog)
	return &clone
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// AppendInteraction appends an interaction to the log, evicting the oldest
// entries once the log exceeds maxLog, and bumps the lifetime counter.
// maxLog <= 0 means unbounded.
func (r *Record) AppendInteraction(in Interaction, maxLog int) {
	r.InteractionLog = append(r.InteractionLog, in)
	if maxLog > 0 && len(r.InteractionLog) > maxLog {
		excess := len(r.InteractionLog) - maxLog
		r.InteractionLog = append(r.InteractionLog[:0:0], r.InteractionLog[excess:]...)
	}
	r.QuestionsAsked++
	r.touch(in.Timestamp)
}

// ApplyEngagement moves the topic's score toward signal by the exponential
// moving average rule value += alpha*(signal-value), clamps the result to
// [0,1] to guard against floating-point drift, and bumps the visit counter.
// Returns the updated score.
func (r *Record) ApplyEngagement(topicID string, alpha, signal float64, at time.Time) TopicScore {
	ts := r.Topics[topicID]
	ts.Value = clamp01(ts.Value + alpha*(signal-ts.Value))
	ts.LastUpdated = at
	ts.Visits++
	r.Topics[topicID] = ts
	r.touch(at)
	return ts
}

// CompleteLab inserts a lab id into the completed set. Inserting an
// already-present id is a no-op, not an error. Returns true if the lab was
// newly completed.
func (r *Record) CompleteLab(labID string, at time.Time) bool {
	if r.LabsCompleted[labID] {
		r.touch(at)
		return false
	}
	r.LabsCompleted[labID] = true
	r.touch(at)
	return true
}

// AddSessionTime accumulates an externally reported session duration.
func (r *Record) AddSessionTime(d time.Duration, at time.Time) {
	r.TimeSpent += d
	r.touch(at)
}

// AverageTopicScore returns the mean of all topic score values, or 0 if the
// learner has no topics yet.
func (r *Record) AverageTopicScore() float64 {
	if len(r.Topics) == 0 {
		return 0
	}
	var sum float64
	for _, ts := range r.Topics {
		sum += ts.Value
	}
	return sum / float64(len(r.Topics))
}

// ActiveSince reports whether the learner has mutated state at or after t.
func (r *Record) ActiveSince(t time.Time) bool {
	return !r.LastActive.Before(t)
}

// touch updates the last-mutation timestamp, keeping it monotone.
func (r *Record) touch(at time.Time) {
	if at.After(r.LastActive) {
		r.LastActive = at
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TOPIC RECOMMENDATION
// ══════════════════════════════════════════════════════════════════════════════

// NextTopic selects the candidate topic the learner should work on next:
// topics never visited sort before any visited topic, then lower score wins,
// then the least-recently-updated. Candidate order breaks remaining ties.
// Returns false if candidates is empty.
func (r *Record) NextTopic(candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	type ranked struct {
		topicID string
		score   TopicScore
		visited bool
	}

	rankings := make([]ranked, 0, len(candidates))
	for _, id := range candidates {
		ts, ok := r.Topics[id]
		rankings = append(rankings, ranked{
			topicID: id,
			score:   ts,
			visited: ok && ts.Visits > 0,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.visited != b.visited {
			return !a.visited
		}
		if a.score.Value != b.score.Value {
			return a.score.Value < b.score.Value
		}
		return a.score.LastUpdated.Before(b.score.LastUpdated)
	})

	return rankings[0].topicID, true
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidLearnerID - learner id is empty or blank.
	ErrInvalidLearnerID = shared.NewDomainError("learner", "Validate", shared.ErrEmptyValue, "learner id must be non-empty")

	// ErrInvalidTopicID - topic id is empty or blank.
	ErrInvalidTopicID = shared.NewDomainError("learner", "Validate", shared.ErrEmptyValue, "topic id must be non-empty")

	// ErrInvalidLabID - lab id is empty or blank.
	ErrInvalidLabID = shared.NewDomainError("learner", "Validate", shared.ErrEmptyValue, "lab id must be non-empty")

	// ErrNegativeDuration - reported session duration is negative.
	ErrNegativeDuration = shared.NewDomainError("learner", "Validate", shared.ErrNegativeValue, "session duration must be non-negative")
)
