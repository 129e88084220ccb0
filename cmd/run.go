package cmd

import (
	"context"
	"log"

	"github.com/career-pathfinder/pathfinder/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full sweep: crawl, match, archive, reprioritize",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting pathfinder", zap.String("version", version))

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	summary, err := app.orchestrator.Run(ctx)
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}

	logger.Info("sweep done",
		zap.Int("fetched", summary.Fetched),
		zap.Int("matched", summary.Matched),
		zap.Int("archived", summary.Archived),
		zap.Int("reprioritized", summary.Reprioritized),
	)
}
