package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/services"
)

// PublishReportCmd creates the publishReport command
func PublishReportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishReport [month]",
		Short: "Write the latest stored report to the report spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var month string
			if len(args) > 0 {
				month = args[0]
			}
			notify, _ := cmd.Flags().GetBool("notify")

			app.Logger.Debug("publishReport command", zap.String("month", month), zap.Bool("notify", notify))

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			var mailer services.Mailer
			if notify {
				gmail, err := app.GmailClient()
				if err != nil {
					return err
				}
				mailer = gmail
			}

			database, err := app.Database()
			if err != nil {
				return err
			}

			result, err := services.PublishReport(app.Ctx, database, sheets, mailer, app.Cfg, app.Logger, month, notify)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Report %s published to tab %q\n", result.Run.ID, result.Tab.Month)
			if len(result.Notified) > 0 {
				fmt.Printf("✓ Summary emailed to %d recipients\n", len(result.Notified))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("notify", false, "Email the summary to the configured recipients")

	return cmd
}
