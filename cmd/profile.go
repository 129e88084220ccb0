package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage career profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create or update a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profileAdd(cmd, args[0])
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Run: func(_ *cobra.Command, _ []string) {
		profileList()
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)

	profileAddCmd.Flags().String("company", "", "target company")
	profileAddCmd.Flags().String("role", "", "target role")
	profileAddCmd.Flags().String("intake", "", "free-text background, skills and interests")
	profileAddCmd.Flags().String("narrative-file", "", "file with the roadmap narrative to sync")
}

func profileAdd(cmd *cobra.Command, name string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	profile, err := app.store.ProfileByName(name)
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}
	if profile == nil {
		profile = &domain.Profile{Name: name}
	}

	if company := cmd.Flag("company").Value.String(); company != "" {
		profile.TargetCompany = company
	}
	if role := cmd.Flag("role").Value.String(); role != "" {
		profile.TargetRole = role
	}
	if intake := cmd.Flag("intake").Value.String(); intake != "" {
		profile.Intake = intake
	}
	if file := cmd.Flag("narrative-file").Value.String(); file != "" {
		narrative, err := readNarrative(file)
		if err != nil {
			logger.Fatal("reading the narrative file", zap.Error(err))
		}
		profile.Narrative = narrative
	}

	if err := app.store.SaveProfile(profile); err != nil {
		logger.Fatal("saving the profile", zap.Error(err))
	}

	plan, err := app.store.SyncPlan(profile)
	if err != nil {
		logger.Fatal("syncing the plan", zap.Error(err))
	}

	fields := []zap.Field{zap.String("profile", profile.Name)}
	if plan != nil {
		fields = append(fields, zap.Int("plan_version", plan.Version), zap.Int("items", len(plan.Items)))
	}
	logger.Info("profile saved", fields...)
}

func profileList() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	app, err := buildApplication(ctx, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	profiles, err := app.store.Profiles()
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	for _, p := range profiles {
		fmt.Printf("%s\tcompany=%q role=%q\n", p.Name, p.TargetCompany, p.TargetRole)
	}
}

func readNarrative(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
