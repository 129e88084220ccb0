package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptAccept       = "Accept into the plan"
	PromptDismiss      = "Dismiss"
	PromptShowFeedback = "Show AI feedback"
	PromptBack         = "back"

	reviewQueueSize = 20
)

var errBack = errors.New("back requested")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Triage pending matches interactively",
	Run: func(_ *cobra.Command, _ []string) {
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func review() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	for {
		profile, err := selectProfile(app)
		if err != nil {
			if errors.Is(err, errBack) {
				return
			}
			logger.Fatal("selecting a profile", zap.Error(err))
		}

		if err := reviewProfile(app, profile); err != nil && !errors.Is(err, errBack) {
			logger.Fatal("reviewing matches", zap.Error(err))
		}
	}
}

func selectProfile(app *application) (*domain.Profile, error) {
	profiles, err := app.store.Profiles()
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, errors.New("no profiles yet, create one with 'pathfinder profile add'")
	}

	items := make([]string, 0, len(profiles)+1)
	for _, p := range profiles {
		items = append(items, p.Name)
	}
	items = append(items, PromptBack)

	prompt := promptui.Select{
		Label: "Choose a profile",
		Items: items,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, errBack
	}

	return app.store.ProfileByName(selected)
}

func reviewProfile(app *application, profile *domain.Profile) error {
	for {
		matches, err := app.store.PendingMatches(profile.ID, reviewQueueSize)
		if err != nil {
			return fmt.Errorf("loading pending matches: %w", err)
		}
		if len(matches) == 0 {
			app.logger.Info("no pending matches", zap.String("profile", profile.Name))
			return nil
		}

		items := make([]string, 0, len(matches)+1)
		for i := range matches {
			m := &matches[i]
			deadline := "no deadline"
			if m.Opportunity.Deadline != nil {
				deadline = m.Opportunity.Deadline.Format("2006-01-02")
			}
			items = append(items, fmt.Sprintf("%d %s / %.1f / %s", m.ID, m.Opportunity.Title, m.PriorityScore, deadline))
		}
		items = append(items, PromptBack)

		matchPrompt := promptui.Select{
			Label: "Choose a match and press ENTER",
			Items: items,
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		match := findMatch(matches, strings.Split(selected, " ")[0])
		if match == nil {
			return fmt.Errorf("there is no such match %s", selected)
		}

		if err := triageMatch(app, match); err != nil {
			return err
		}
	}
}

func findMatch(matches []domain.Match, id string) *domain.Match {
	for i := range matches {
		if fmt.Sprint(matches[i].ID) == id {
			return &matches[i]
		}
	}
	return nil
}

func triageMatch(app *application, match *domain.Match) error {
	for {
		prompt := promptui.Select{
			Label: match.Opportunity.Title,
			Items: []string{PromptAccept, PromptDismiss, PromptShowFeedback, PromptBack},
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptAccept:
			item, err := app.lifecycle.Accept(match)
			if err != nil {
				return fmt.Errorf("accepting match %d: %w", match.ID, err)
			}
			app.logger.Info("match accepted",
				zap.Uint("match_id", match.ID),
				zap.Uint("item_id", item.ID),
				zap.Timep("start", item.StartDate),
				zap.Timep("end", item.EndDate),
			)
			return nil
		case PromptDismiss:
			if err := app.lifecycle.Dismiss(match); err != nil {
				return fmt.Errorf("dismissing match %d: %w", match.ID, err)
			}
			app.logger.Info("match dismissed", zap.Uint("match_id", match.ID))
			return nil
		case PromptShowFeedback:
			feedback := match.Feedback
			if feedback == "" {
				feedback = "no feedback yet"
			}
			fmt.Printf("\n%s\n\n", feedback)
		case PromptBack:
			return nil
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}
