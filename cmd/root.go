package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/ai"
	"github.com/career-pathfinder/pathfinder/internal/ai/gemini"
	"github.com/career-pathfinder/pathfinder/internal/config"
	"github.com/career-pathfinder/pathfinder/internal/crawler"
	"github.com/career-pathfinder/pathfinder/internal/lifecycle"
	"github.com/career-pathfinder/pathfinder/internal/pipeline"
	"github.com/career-pathfinder/pathfinder/internal/secrets"
	"github.com/career-pathfinder/pathfinder/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "pathfinder"

	defaultDatabase = "pathfinder.db"
)

type Config struct {
	Database  string          `mapstructure:"database"`
	UserAgent string          `mapstructure:"user-agent"`
	Sources   *SourcesConfig  `mapstructure:"sources"`
	Matching  *MatchingConfig `mapstructure:"matching"`
	Pipeline  *PipelineConfig `mapstructure:"pipeline"`
	Prompts   *PromptsConfig  `mapstructure:"prompts"`
	AI        *AIConfig       `mapstructure:"ai"`
}

type SourcesConfig struct {
	JobKoreaKeywords   []string `mapstructure:"jobkorea-keywords"`
	DataPortalKeywords []string `mapstructure:"data-portal-keywords"`
	MaxItemsPerSource  int      `mapstructure:"max-items-per-source"`
}

type MatchingConfig struct {
	RecentDays           int     `mapstructure:"recent-days"`
	MinScore             float64 `mapstructure:"min-score"`
	DefaultDurationWeeks float64 `mapstructure:"default-duration-weeks"`
}

type PipelineConfig struct {
	IntervalMinutes int `mapstructure:"interval-minutes"`
}

type PromptsConfig struct {
	OpportunityFeedback string `mapstructure:"opportunity-feedback"`
	Prioritization      string `mapstructure:"prioritization"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "pathfinder matches crawled career opportunities against roadmap plans and schedules the accepted ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is pathfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config file is fine, everything has a default. An
	// explicitly given file must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// defaultsFrom maps the file config onto the provider's static fallbacks.
func defaultsFrom(cfg *Config) config.Defaults {
	defaults := config.Defaults{
		JobKoreaKeywords:     []string{"백엔드 개발자"},
		DataPortalKeywords:   []string{"공모전"},
		MaxItemsPerSource:    20,
		RecentDays:           14,
		MinScore:             35,
		DefaultDurationWeeks: 2,
	}

	if cfg == nil {
		return defaults
	}
	if cfg.Sources != nil {
		if len(cfg.Sources.JobKoreaKeywords) > 0 {
			defaults.JobKoreaKeywords = cfg.Sources.JobKoreaKeywords
		}
		if len(cfg.Sources.DataPortalKeywords) > 0 {
			defaults.DataPortalKeywords = cfg.Sources.DataPortalKeywords
		}
		if cfg.Sources.MaxItemsPerSource > 0 {
			defaults.MaxItemsPerSource = cfg.Sources.MaxItemsPerSource
		}
	}
	if cfg.Matching != nil {
		if cfg.Matching.RecentDays > 0 {
			defaults.RecentDays = cfg.Matching.RecentDays
		}
		if cfg.Matching.MinScore > 0 {
			defaults.MinScore = cfg.Matching.MinScore
		}
		if cfg.Matching.DefaultDurationWeeks > 0 {
			defaults.DefaultDurationWeeks = cfg.Matching.DefaultDurationWeeks
		}
	}

	return defaults
}

// application is the assembled object graph shared by run, serve and review.
type application struct {
	config       *Config
	store        *store.Store
	provider     *config.Provider
	lifecycle    *lifecycle.Manager
	orchestrator *pipeline.Orchestrator
	logger       *zap.Logger
}

func buildApplication(ctx context.Context, logger *zap.Logger) (*application, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	database := defaultDatabase
	if cfg != nil && cfg.Database != "" {
		database = cfg.Database
	}

	st, err := store.Open(database)
	if err != nil {
		return nil, fmt.Errorf("opening the store: %w", err)
	}

	provider := config.NewProvider(st, defaultsFrom(cfg), config.DefaultTTL)
	manager := lifecycle.New(st, provider, logger)

	client := crawler.NewClient(logger)
	if cfg != nil && cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	sources := []crawler.Source{
		crawler.NewJobKorea(client),
		crawler.NewDataPortal(client),
	}

	var generator ai.Generator
	if cfg != nil && cfg.AI != nil && cfg.AI.Enabled {
		if generator, err = newGenerator(ctx, cfg.AI, logger); err != nil {
			logger.Warn("continuing without AI steps", zap.Error(err))
		}
	}

	prompts := pipeline.Prompts{}
	if cfg != nil && cfg.Prompts != nil {
		prompts.OpportunityFeedback = cfg.Prompts.OpportunityFeedback
		prompts.Prioritization = cfg.Prompts.Prioritization
	}

	orchestrator := pipeline.New(st, provider, sources, generator, manager, prompts, logger)

	return &application{
		config:       cfg,
		store:        st,
		provider:     provider,
		lifecycle:    manager,
		orchestrator: orchestrator,
		logger:       logger,
	}, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	client, err := gemini.New(ctx, apiKey, cfg.Gemini.Model, genLogger)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second
	generator := ai.WithTimeout(client, timeout)
	return ai.WithRetries(generator, cfg.Gemini.MaxRetries, time.Second), nil
}
