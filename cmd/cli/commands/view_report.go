package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/services"
)

// ViewReportCmd creates the viewReport command
func ViewReportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewReport [month]",
		Short: "Show the latest stored report for a month (defaults to current month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var month string
			if len(args) > 0 {
				month = args[0]
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			app.Logger.Debug("viewReport command", zap.String("month", month))

			database, err := app.Database()
			if err != nil {
				return err
			}

			stored, err := services.ViewReport(app.Ctx, database, app.Cfg, app.Logger, month)
			if err != nil {
				return err
			}

			if asJSON {
				fmt.Println(string(stored.Run.Document))
				return nil
			}

			printReport(stored.Report)
			fmt.Printf("Run %s generated %s\n", stored.Run.ID, stored.Run.GeneratedAt.Format("2006-01-02 15:04"))
			if stored.Run.PublishedAt != nil {
				fmt.Printf("Published %s\n", stored.Run.PublishedAt.Format("2006-01-02 15:04"))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the stored JSON document")

	return cmd
}
