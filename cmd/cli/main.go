package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/cmd/cli/commands"
	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/clients/trackerclient"
	"github.com/jakechorley/editor-points/pkg/metrics"
	"github.com/jakechorley/editor-points/pkg/utils/logging"
)

var app = &commands.AppContext{}

func main() {
	rootCmd := &cobra.Command{
		Use:   "editor-points",
		Short: "Editor Points CLI - Monthly points and incentive reports for video editors",
		Long:  `A CLI tool that scores completed editing tasks, ranks the fixed team and computes monthly bonuses.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := app.CloseDatabase(); err != nil {
				app.Logger.Warn("Failed to close database", zap.Error(err))
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateReportCmd(app))
	rootCmd.AddCommand(commands.ViewReportCmd(app))
	rootCmd.AddCommand(commands.PublishReportCmd(app))
	rootCmd.AddCommand(commands.ListReportsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, tracker client and metrics.
// The database and Google clients are created on demand by the commands that use them.
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(app.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", app.Env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("incentives_version", app.Cfg.Incentives.Version),
		zap.Int("lists", len(app.Cfg.Tracker.Lists)))

	app.Tracker = trackerclient.NewClient(app.Cfg.Tracker)
	app.Metrics = metrics.NewRecorder()

	return nil
}
