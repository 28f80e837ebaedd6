package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awslearn-hub/tutor-core/internal/application"
	"github.com/awslearn-hub/tutor-core/internal/application/query"
)

var reportCmd = &cobra.Command{
	Use:   "report <learner-id>",
	Short: "Show a learner's progress report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			report, err := eng.ProgressReport(ctx, query.ProgressReportQuery{LearnerID: args[0]})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		})
	},
}
