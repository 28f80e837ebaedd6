package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func entryAt(ts time.Time, rating int, comment, category string) *Entry {
	return &Entry{
		ID:        "id-" + ts.Format(time.RFC3339Nano),
		LearnerID: "alice",
		Timestamp: ts,
		Rating:    rating,
		Comment:   comment,
		Category:  category,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 7)

	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.AverageRating)
	assert.Len(t, s.RatingHistogram, 5)
	for r := MinRating; r <= MaxRating; r++ {
		assert.Equal(t, 0, s.RatingHistogram[r])
	}
	assert.Empty(t, s.TopCategories)
}

func TestSummarize_AverageAndHistogram(t *testing.T) {
	now := time.Now().UTC()
	entries := []*Entry{
		entryAt(now, 5, "", "lab"),
		entryAt(now.Add(-time.Hour), 4, "", "lab"),
		entryAt(now.Add(-2*time.Hour), 4, "", "explanation"),
	}

	s := Summarize(entries, 7)

	assert.Equal(t, 3, s.Count)
	if assert.NotNil(t, s.AverageRating) {
		assert.InDelta(t, 13.0/3.0, *s.AverageRating, 1e-9)
	}
	assert.Equal(t, 1, s.RatingHistogram[5])
	assert.Equal(t, 2, s.RatingHistogram[4])
	assert.Equal(t, 0, s.RatingHistogram[1])
}

func TestSummarize_TopCategoriesRankedByFrequency(t *testing.T) {
	now := time.Now().UTC()
	entries := []*Entry{
		entryAt(now, 5, "", "lab"),
		entryAt(now, 4, "", "lab"),
		entryAt(now, 3, "", "explanation"),
		entryAt(now, 3, "", ""),
	}

	s := Summarize(entries, 7)

	assert.Equal(t, []CategoryCount{
		{Category: "lab", Count: 2},
		{Category: "explanation", Count: 1},
	}, s.TopCategories)
}

func TestNewEntry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  NewEntryParams
		wantErr error
	}{
		{"valid", NewEntryParams{ID: "1", LearnerID: "alice", Rating: 3}, nil},
		{"rating too low", NewEntryParams{ID: "1", LearnerID: "alice", Rating: 0}, ErrInvalidRating},
		{"rating too high", NewEntryParams{ID: "1", LearnerID: "alice", Rating: 6}, ErrInvalidRating},
		{"blank learner", NewEntryParams{ID: "1", LearnerID: "  ", Rating: 3}, ErrInvalidLearnerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			assert.NoError(t, err)
			assert.False(t, e.Timestamp.IsZero())
		})
	}
}

func TestAnalyzeInsights_Empty(t *testing.T) {
	ins := AnalyzeInsights(nil, time.Now(), 7)

	assert.Equal(t, 0, ins.TotalEntries)
	assert.Nil(t, ins.LifetimeAverage)
	assert.Nil(t, ins.RecentAverage)
	assert.Equal(t, TrendSteady, ins.Trend)
	assert.Empty(t, ins.ImprovementAreas)
}

func TestAnalyzeInsights_Trend(t *testing.T) {
	now := time.Now().UTC()
	cutoff := now.Add(-7 * 24 * time.Hour)

	t.Run("improving", func(t *testing.T) {
		entries := []*Entry{
			entryAt(now.Add(-30*24*time.Hour), 2, "", ""),
			entryAt(now.Add(-20*24*time.Hour), 3, "", ""),
			entryAt(now.Add(-time.Hour), 5, "", ""),
		}
		ins := AnalyzeInsights(entries, cutoff, 7)
		assert.Equal(t, TrendImproving, ins.Trend)
	})

	t.Run("declining", func(t *testing.T) {
		entries := []*Entry{
			entryAt(now.Add(-30*24*time.Hour), 5, "", ""),
			entryAt(now.Add(-20*24*time.Hour), 5, "", ""),
			entryAt(now.Add(-time.Hour), 2, "", ""),
		}
		ins := AnalyzeInsights(entries, cutoff, 7)
		assert.Equal(t, TrendDeclining, ins.Trend)
	})
}

func TestAnalyzeInsights_ImprovementAreas(t *testing.T) {
	now := time.Now().UTC()
	entries := []*Entry{
		entryAt(now, 2, "the explanation was unclear", ""),
		entryAt(now, 1, "responses are too SLOW", ""),
		entryAt(now, 5, "great", ""),
	}

	ins := AnalyzeInsights(entries, now.Add(-24*time.Hour), 1)

	assert.Contains(t, ins.ImprovementAreas, "improve explanation clarity")
	assert.Contains(t, ins.ImprovementAreas, "improve response latency")
	// Two of three entries rate <= 2, above the low-rating share.
	assert.Contains(t, ins.ImprovementAreas, "review overall tutoring quality: high share of low ratings")
}
