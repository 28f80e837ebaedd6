package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awslearn-hub/tutor-core/internal/application"
	"github.com/awslearn-hub/tutor-core/internal/application/query"
)

var statsWindowDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cross-learner statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, eng *application.Engine) error {
			stats, err := eng.GlobalStats(ctx, query.GlobalStatsQuery{ActiveWindowDays: statsWindowDays})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsWindowDays, "window", 0, "active-learner window in days (0 = configured default)")
}
