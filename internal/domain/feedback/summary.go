package feedback

import (
	"sort"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// WINDOWED AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// CategoryCount is one entry of the frequency-ranked category list.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary aggregates feedback entries inside a trailing time window.
type Summary struct {
	// WindowDays is the trailing window the summary covers.
	WindowDays int `json:"window_days"`

	// Count is the number of entries inside the window.
	Count int `json:"count"`

	// AverageRating is the mean rating, or nil when the window is empty.
	AverageRating *float64 `json:"average_rating"`

	// RatingHistogram counts entries per rating value 1..5.
	RatingHistogram map[int]int `json:"rating_histogram"`

	// TopCategories lists categories by descending frequency. Entries
	// without a category are not counted.
	TopCategories []CategoryCount `json:"top_categories"`
}

// Summarize aggregates the given entries. Callers are expected to have
// already filtered the entries to the window of interest; an empty slice
// yields Count=0 with a nil average rather than a division failure.
func Summarize(entries []*Entry, windowDays int) Summary {
	s := Summary{
		WindowDays:      windowDays,
		Count:           len(entries),
		RatingHistogram: make(map[int]int, MaxRating),
	}
	for r := MinRating; r <= MaxRating; r++ {
		s.RatingHistogram[r] = 0
	}

	if len(entries) == 0 {
		return s
	}

	var total int
	categories := make(map[string]int)
	for _, e := range entries {
		total += e.Rating
		s.RatingHistogram[e.Rating]++
		if e.Category != "" {
			categories[e.Category]++
		}
	}

	avg := float64(total) / float64(len(entries))
	s.AverageRating = &avg

	s.TopCategories = make([]CategoryCount, 0, len(categories))
	for cat, n := range categories {
		s.TopCategories = append(s.TopCategories, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(s.TopCategories, func(i, j int) bool {
		if s.TopCategories[i].Count != s.TopCategories[j].Count {
			return s.TopCategories[i].Count > s.TopCategories[j].Count
		}
		return s.TopCategories[i].Category < s.TopCategories[j].Category
	})

	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHTS
// Trend and improvement-area analysis over the full feedback history.
// ══════════════════════════════════════════════════════════════════════════════

// Trend describes how a recent window compares with the lifetime average.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendSteady    Trend = "steady"
)

// Insights summarizes the full feedback history with a recent-window trend.
type Insights struct {
	TotalEntries     int      `json:"total_entries"`
	LifetimeAverage  *float64 `json:"lifetime_average"`
	RecentAverage    *float64 `json:"recent_average"`
	RecentWindowDays int      `json:"recent_window_days"`
	Trend            Trend    `json:"trend"`
	ImprovementAreas []string `json:"improvement_areas"`
}

// lowRatingShare is the fraction of ratings <= 2 above which the overall
// experience is flagged for review.
const lowRatingShare = 0.2

// commentKeywords maps comment keywords to improvement suggestions.
var commentKeywords = []struct {
	keyword    string
	suggestion string
}{
	{"slow", "improve response latency"},
	{"unclear", "improve explanation clarity"},
	{"wrong", "review answer accuracy"},
	{"confusing", "simplify complex explanations"},
	{"difficult", "adjust difficulty level"},
	{"boring", "make sessions more engaging"},
}

// AnalyzeInsights computes lifetime vs recent averages and scans comments
// for recurring complaint themes. recentCutoff bounds the recent window;
// entries at or after it count as recent.
func AnalyzeInsights(entries []*Entry, recentCutoff time.Time, recentWindowDays int) Insights {
	ins := Insights{
		TotalEntries:     len(entries),
		RecentWindowDays: recentWindowDays,
		Trend:            TrendSteady,
		ImprovementAreas: []string{},
	}
	if len(entries) == 0 {
		return ins
	}

	var total, recentTotal, recentCount, lowCount int
	for _, e := range entries {
		total += e.Rating
		if e.Rating <= 2 {
			lowCount++
		}
		if !e.Timestamp.Before(recentCutoff) {
			recentTotal += e.Rating
			recentCount++
		}
	}

	lifetime := float64(total) / float64(len(entries))
	ins.LifetimeAverage = &lifetime

	if recentCount > 0 {
		recent := float64(recentTotal) / float64(recentCount)
		ins.RecentAverage = &recent
		switch {
		case recent > lifetime:
			ins.Trend = TrendImproving
		case recent < lifetime:
			ins.Trend = TrendDeclining
		}
	}

	if float64(lowCount) > float64(len(entries))*lowRatingShare {
		ins.ImprovementAreas = append(ins.ImprovementAreas, "review overall tutoring quality: high share of low ratings")
	}
	ins.ImprovementAreas = append(ins.ImprovementAreas, scanComments(entries)...)

	return ins
}

// scanComments does a simple keyword scan over comments for common themes.
func scanComments(entries []*Entry) []string {
	seen := make(map[string]bool)
	var areas []string
	for _, kw := range commentKeywords {
		for _, e := range entries {
			if e.Comment == "" {
				continue
			}
			if strings.Contains(strings.ToLower(e.Comment), kw.keyword) && !seen[kw.suggestion] {
				seen[kw.suggestion] = true
				areas = append(areas, kw.suggestion)
				break
			}
		}
	}
	return areas
}
