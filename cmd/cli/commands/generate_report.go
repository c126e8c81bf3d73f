package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/services"
	"github.com/jakechorley/editor-points/pkg/db"
)

// GenerateReportCmd creates the generateReport command
func GenerateReportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateReport",
		Short: "Compute editor points and bonuses for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			month, _ := cmd.Flags().GetString("month")
			lists, _ := cmd.Flags().GetStringSlice("list")
			preview, _ := cmd.Flags().GetBool("preview")
			output, _ := cmd.Flags().GetString("output")

			app.Logger.Debug("generateReport command",
				zap.String("month", month),
				zap.Strings("lists", lists),
				zap.Bool("preview", preview))

			var store db.ReportStore
			if !preview {
				database, err := app.Database()
				if err != nil {
					return err
				}
				store = database
			}

			result, err := services.GenerateReport(
				app.Ctx,
				app.Tracker,
				app.Tracker,
				store,
				app.Metrics,
				app.Cfg,
				app.Logger,
				services.GenerateOptions{
					Month:      month,
					ListIDs:    lists,
					Preview:    preview,
					OutputPath: output,
				},
			)
			if err != nil {
				return err
			}

			printReport(result.Report)

			if len(result.FailedLists) > 0 {
				fmt.Printf("%s⚠️  %d lists could not be fetched:%s\n", colorYellow, len(result.FailedLists), colorReset)
				for _, id := range result.FailedLists {
					fmt.Printf("  ✗ %s\n", id)
				}
				fmt.Println()
			}

			if result.Stored {
				fmt.Printf("✓ Report stored (run %s)\n", result.Run.ID)
			} else {
				fmt.Println("Preview only - report not stored")
			}
			if output != "" {
				fmt.Printf("✓ Report written to %s\n", output)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("month", "", "Month to report on as YYYY-MM (default current month)")
	cmd.Flags().StringSlice("list", nil, "Tracker list id to include (repeatable, default all configured lists)")
	cmd.Flags().Bool("preview", false, "Compute without storing the report")
	cmd.Flags().String("output", "", "Also write the JSON report to this file")

	return cmd
}
