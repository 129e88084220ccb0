package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and tune the matching parameters",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved parameters and where they came from",
	Run: func(_ *cobra.Command, _ []string) {
		configShow()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Persist new parameter values",
	Run: func(cmd *cobra.Command, _ []string) {
		configSet(cmd)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringSlice("jobkorea-keywords", nil, "crawl keywords for jobkorea")
	configSetCmd.Flags().StringSlice("data-portal-keywords", nil, "crawl keywords for the data portal")
	configSetCmd.Flags().Int("max-items-per-source", 0, "per-source fetch cap")
	configSetCmd.Flags().Int("recent-days", 0, "matching window in days")
	configSetCmd.Flags().Float64("min-score", 0, "minimum match score")
}

func configShow() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	values := app.provider.ForceRefresh()
	pretty, _ := json.MarshalIndent(values, "", "  ")
	fmt.Println(string(pretty))
}

func configSet(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	// Start from the effective values so one settings row always carries the
	// full parameter set.
	current := app.provider.ForceRefresh()
	settings := &domain.Settings{
		JobKoreaKeywords:   current.JobKoreaKeywords,
		DataPortalKeywords: current.DataPortalKeywords,
		MaxItemsPerSource:  current.MaxItemsPerSource,
		RecentDays:         current.RecentDays,
		MinScore:           current.MinScore,
	}

	if keywords, _ := cmd.Flags().GetStringSlice("jobkorea-keywords"); len(keywords) > 0 {
		settings.JobKoreaKeywords = keywords
	}
	if keywords, _ := cmd.Flags().GetStringSlice("data-portal-keywords"); len(keywords) > 0 {
		settings.DataPortalKeywords = keywords
	}
	if v, _ := cmd.Flags().GetInt("max-items-per-source"); v > 0 {
		settings.MaxItemsPerSource = v
	}
	if v, _ := cmd.Flags().GetInt("recent-days"); v > 0 {
		settings.RecentDays = v
	}
	if v, _ := cmd.Flags().GetFloat64("min-score"); v > 0 {
		settings.MinScore = v
	}

	if err := app.store.SaveSettings(settings); err != nil {
		logger.Fatal("saving settings", zap.Error(err))
	}
	app.provider.Invalidate()

	logger.Info("settings saved", zap.String("source", app.provider.Get().Source))
}
