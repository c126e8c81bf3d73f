package points

import "context"

// WeekendEvaluator credits fixed-team editors for weekend and holiday
// deliveries at a weight-keyed rate, split between co-owners
type WeekendEvaluator struct {
	Rates map[int]float64
}

func (e *WeekendEvaluator) Name() string { return "weekend" }

func (e *WeekendEvaluator) Evaluate(ctx context.Context, state *RunState) {
	for _, editor := range state.Editors {
		if editor.Team != TeamFixed {
			continue
		}

		amount := 0.0
		count := 0
		for _, c := range editor.Contributions {
			if !c.Weekend {
				continue
			}
			amount += Split(e.Rates[c.Weight], c.Owners)
			count++
		}

		b := state.Bonus(editor.ID)
		b.Weekend = Round2(amount)
		b.WeekendTasks = count
	}
}
