package points

import (
	"context"
	"sort"
)

// StreakDay is a day whose point total exceeded the daily threshold
type StreakDay struct {
	Date   string  `json:"date"`
	Points float64 `json:"points"`
}

// StreakEvaluator pays a flat amount for every day a fixed-team editor's
// points were strictly above the threshold
type StreakEvaluator struct {
	Threshold   float64
	BonusPerDay float64
}

func (e *StreakEvaluator) Name() string { return "streak" }

func (e *StreakEvaluator) Evaluate(ctx context.Context, state *RunState) {
	for _, editor := range state.Editors {
		if editor.Team != TeamFixed {
			continue
		}

		days := QualifyingDays(editor.Daily, e.Threshold)
		state.StreakDays[editor.ID] = days

		b := state.Bonus(editor.ID)
		b.StreakDays = len(days)
		b.Streak = float64(len(days)) * e.BonusPerDay
	}
}

// QualifyingDays returns the days strictly above threshold, ascending by date
func QualifyingDays(daily map[string]float64, threshold float64) []StreakDay {
	days := make([]StreakDay, 0)
	for date, value := range daily {
		if value > threshold {
			days = append(days, StreakDay{Date: date, Points: value})
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}
