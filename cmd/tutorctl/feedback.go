package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awslearn-hub/tutor-core/internal/application"
	"github.com/awslearn-hub/tutor-core/internal/application/query"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect and export collected feedback",
}

var (
	summaryDays  int
	insightsDays int
	exportFormat string
	exportSince  string
	historyLimit int
)

var feedbackSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate feedback inside a trailing window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			summary, err := eng.FeedbackSummary(ctx, query.FeedbackSummaryQuery{Days: summaryDays})
			if err != nil {
				return err
			}
			return printJSON(summary)
		})
	},
}

var feedbackInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show feedback trend and improvement areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			insights, err := eng.FeedbackInsights(ctx, query.FeedbackInsightsQuery{RecentWindowDays: insightsDays})
			if err != nil {
				return err
			}
			return printJSON(insights)
		})
	},
}

var feedbackHistoryCmd = &cobra.Command{
	Use:   "history <learner-id>",
	Short: "List a learner's feedback entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			entries, err := eng.FeedbackHistory(ctx, query.FeedbackHistoryQuery{
				LearnerID: args[0],
				Limit:     historyLimit,
			})
			if err != nil {
				return err
			}
			return printJSON(entries)
		})
	},
}

var feedbackExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the feedback history as JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		var since time.Time
		if exportSince != "" {
			parsed, err := time.Parse(time.RFC3339, exportSince)
			if err != nil {
				return fmt.Errorf("invalid --since (want RFC3339): %w", err)
			}
			since = parsed
		}
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			out, err := eng.ExportFeedback(ctx, query.ExportFeedbackQuery{
				Format: query.ExportFormat(exportFormat),
				Since:  since,
			})
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		})
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	feedbackSummaryCmd.Flags().IntVar(&summaryDays, "days", 7, "trailing window in days")
	feedbackInsightsCmd.Flags().IntVar(&insightsDays, "days", 7, "recent window in days")
	feedbackHistoryCmd.Flags().IntVar(&historyLimit, "limit", 0, "most recent entries to show (0 = all)")
	feedbackExportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json or csv")
	feedbackExportCmd.Flags().StringVar(&exportSince, "since", "", "only entries at or after this RFC3339 time")

	feedbackCmd.AddCommand(feedbackSummaryCmd)
	feedbackCmd.AddCommand(feedbackInsightsCmd)
	feedbackCmd.AddCommand(feedbackHistoryCmd)
	feedbackCmd.AddCommand(feedbackExportCmd)
}
