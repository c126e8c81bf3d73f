package commands

import (
	"fmt"
	"strings"

	"github.com/jakechorley/editor-points/pkg/core/points"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// teamColor picks the row color for an editor: fixed editors green,
// ai-assisted yellow, freelance dim
func teamColor(team points.Team) string {
	switch team {
	case points.TeamFixed:
		return colorGreen
	case points.TeamAIAssisted:
		return colorYellow
	default:
		return colorDim
	}
}

func rankLabel(rank int) string {
	if rank == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", rank)
}

// printReport prints the editor table, the totals and any unmatched tasks
func printReport(report *points.Report) {
	nameColWidth := 20
	for _, e := range report.Editors {
		if len(e.Name)+2 > nameColWidth {
			nameColWidth = len(e.Name) + 2
		}
	}

	fmt.Printf("\nEditor points for %s (config %s)\n\n", report.Meta.Month, report.Meta.ConfigVersion)
	fmt.Printf("%-6s%-*s%-14s%10s%8s%12s\n", "Rank", nameColWidth, "Editor", "Team", "Points", "Tasks", "Bonus")
	fmt.Println(strings.Repeat("-", 6+nameColWidth+14+10+8+12))

	for _, e := range report.Editors {
		fmt.Printf("%s%-6s%-*s%-14s%10.1f%8d%12.2f%s\n",
			teamColor(e.Team),
			rankLabel(e.Rank),
			nameColWidth, e.Name,
			e.Team,
			e.Points,
			e.TaskCount,
			e.Bonus.Total,
			colorReset,
		)
	}

	fmt.Println()
	fmt.Printf("Total points:  %.1f\n", report.Summary.TotalPoints)
	fmt.Printf("Total editors: %d\n", report.Summary.TotalEditors)
	fmt.Printf("Total bonus:   %.2f\n", report.Summary.TotalBonus)
	fmt.Printf("Tasks:         %d fetched, %d considered, %d out of window, %d not completed\n",
		report.Meta.TasksFetched,
		report.Meta.TasksConsidered,
		report.Meta.TasksOutOfWindow,
		report.Meta.TasksNotCompleted,
	)
	if report.Meta.NoReworkSkipped {
		fmt.Printf("%sNo-rework verification was skipped%s\n", colorYellow, colorReset)
	} else if report.Meta.StatusLookupFailedBatches > 0 {
		fmt.Printf("%s%d of %d status lookup batches failed; affected tasks counted as unverified%s\n",
			colorYellow, report.Meta.StatusLookupFailedBatches, report.Meta.StatusLookupBatches, colorReset)
	}

	if len(report.Unmatched) > 0 {
		fmt.Printf("\n%sUnmatched tasks (%d):%s\n", colorRed, len(report.Unmatched), colorReset)
		for _, u := range report.Unmatched {
			fmt.Printf("  ✗ %s %s (%s)\n", u.TaskID, u.TaskName, u.Reason)
		}
	}
	fmt.Println()
}
