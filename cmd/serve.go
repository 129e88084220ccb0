package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/logger"
	"github.com/career-pathfinder/pathfinder/internal/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultSweepIntervalMinutes = 60

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sweep on an interval until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting pathfinder daemon", zap.String("version", version))

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	minutes := defaultSweepIntervalMinutes
	if app.config != nil && app.config.Pipeline != nil && app.config.Pipeline.IntervalMinutes > 0 {
		minutes = app.config.Pipeline.IntervalMinutes
	}

	daemon := pipeline.NewDaemon(app.orchestrator, time.Duration(minutes)*time.Minute, logger)
	daemon.Start(ctx)
}
