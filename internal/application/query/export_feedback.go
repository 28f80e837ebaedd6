package query

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/awslearn-hub/tutor-core/internal/domain/feedback"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/internal/store"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT FEEDBACK QUERY
// Serializes the feedback history for offline analysis, as JSON or CSV.
// ══════════════════════════════════════════════════════════════════════════════

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	// ExportJSON - pretty-printed JSON array of entries.
	ExportJSON ExportFormat = "json"

	// ExportCSV - one header row plus one row per entry.
	ExportCSV ExportFormat = "csv"
)

// ErrUnknownExportFormat - requested format is neither json nor csv.
var ErrUnknownExportFormat = shared.NewDomainError("query", "ExportFeedback", shared.ErrValidation, "export format must be json or csv")

// ExportFeedbackQuery contains the parameters for a feedback export.
type ExportFeedbackQuery struct {
	// Format is the output serialization.
	Format ExportFormat

	// Since limits the export to entries at or after this time. Zero
	// exports the full history.
	Since time.Time
}

// Validate validates the query.
func (q ExportFeedbackQuery) Validate() error {
	switch q.Format {
	case ExportJSON, ExportCSV:
		return nil
	default:
		return ErrUnknownExportFormat
	}
}

// ExportFeedbackHandler handles the ExportFeedbackQuery.
type ExportFeedbackHandler struct {
	feedbacks *store.FeedbackStore
}

// NewExportFeedbackHandler creates a new ExportFeedbackHandler.
func NewExportFeedbackHandler(feedbacks *store.FeedbackStore) *ExportFeedbackHandler {
	return &ExportFeedbackHandler{feedbacks: feedbacks}
}

// Handle executes the export feedback query and returns the serialized
// bytes.
func (h *ExportFeedbackHandler) Handle(_ context.Context, q ExportFeedbackQuery) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	entries := h.feedbacks.ListSince(q.Since)
	switch q.Format {
	case ExportJSON:
		return json.MarshalIndent(entries, "", "  ")
	case ExportCSV:
		return exportCSV(entries)
	}
	return nil, ErrUnknownExportFormat
}

func exportCSV(entries []*feedback.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "learner_id", "timestamp", "rating", "comment", "category"}); err != nil {
		return nil, fmt.Errorf("export feedback: write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.ID,
			e.LearnerID,
			e.Timestamp.Format(time.RFC3339),
			strconv.Itoa(e.Rating),
			e.Comment,
			e.Category,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export feedback: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export feedback: flush: %w", err)
	}
	return buf.Bytes(), nil
}
