package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/awslearn-hub/tutor-core/config"
	"github.com/awslearn-hub/tutor-core/internal/application"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tutorctl",
	Short: "Inspect the tutoring engine's learner state and feedback",
	Long: "tutorctl reads the learner-state store and feedback log behind the\n" +
		"tutoring assistant: progress reports, global statistics, feedback\n" +
		"summaries, and exports. Configuration comes from TUTOR_* environment\n" +
		"variables (TUTOR_BACKEND, TUTOR_SQLITE_PATH, TUTOR_DATABASE_URL, ...).",
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(feedbackCmd)
}

// withEngine loads config, builds the engine over the configured backend,
// warms it up, and runs fn. Cleanup happens regardless of fn's outcome.
func withEngine(ctx context.Context, fn func(ctx context.Context, eng *application.Engine) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.Logging.Level))

	eng, cleanup, err := application.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = eng.Close()
		_ = cleanup()
	}()

	if err := eng.WarmUp(ctx); err != nil {
		return err
	}
	return fn(ctx, eng)
}
