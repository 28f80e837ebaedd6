package query

import (
	"context"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMEND TOPIC QUERY
// Picks the candidate topic the learner should work on next: unvisited
// topics first, then lowest score, then least recently updated.
// ══════════════════════════════════════════════════════════════════════════════

// RecommendTopicQuery contains the parameters for a topic recommendation.
type RecommendTopicQuery struct {
	// LearnerID is the learner to recommend for.
	LearnerID string

	// CandidateTopics is the set of topic ids to choose from, as supplied
	// by the caller (e.g. the current curriculum unit).
	CandidateTopics []string
}

// Validate validates the query.
func (q RecommendTopicQuery) Validate() error {
	if !learner.ID(q.LearnerID).IsValid() {
		return learner.ErrInvalidLearnerID
	}
	return nil
}

// RecommendTopicDTO is the recommendation result.
type RecommendTopicDTO struct {
	// TopicID is the recommended topic. Empty when Found is false.
	TopicID string `json:"topic_id"`

	// Found is false when no candidates were supplied.
	Found bool `json:"found"`

	// Score is the learner's current score for the recommended topic
	// (zero value for a never-visited topic).
	Score learner.TopicScore `json:"score"`
}

// RecommendTopicHandler handles the RecommendTopicQuery.
type RecommendTopicHandler struct {
	states *store.StateStore
}

// NewRecommendTopicHandler creates a new RecommendTopicHandler.
func NewRecommendTopicHandler(states *store.StateStore) *RecommendTopicHandler {
	return &RecommendTopicHandler{states: states}
}

// Handle executes the recommend topic query.
func (h *RecommendTopicHandler) Handle(ctx context.Context, q RecommendTopicQuery) (*RecommendTopicDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.states.Snapshot(ctx, q.LearnerID)
	if err != nil {
		return nil, err
	}

	topicID, ok := rec.NextTopic(q.CandidateTopics)
	if !ok {
		return &RecommendTopicDTO{}, nil
	}
	return &RecommendTopicDTO{
		TopicID: topicID,
		Found:   true,
		Score:   rec.Topics[topicID],
	}, nil
}
