package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/editor-points/pkg/core/services"
)

// ListReportsCmd creates the listReports command
func ListReportsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listReports",
		Short: "List stored report runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			runs, err := services.ListReports(app.Ctx, database, app.Logger)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No reports stored yet.")
				return nil
			}

			fmt.Printf("\nFound %d reports:\n\n", len(runs))
			fmt.Printf("%-38s%-9s%-18s%9s%12s%12s  %s\n", "Run", "Month", "Generated", "Editors", "Points", "Bonus", "Published")
			for _, run := range runs {
				published := colorDim + "no" + colorReset
				if run.PublishedAt != nil {
					published = colorGreen + run.PublishedAt.Format("2006-01-02") + colorReset
				}
				fmt.Printf("%-38s%-9s%-18s%9d%12.1f%12.2f  %s\n",
					run.ID,
					run.Month,
					run.GeneratedAt.Format("2006-01-02 15:04"),
					run.Editors,
					run.TotalPoints,
					run.TotalBonus,
					published,
				)
			}
			fmt.Println()

			return nil
		},
	}
}
