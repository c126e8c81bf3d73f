package points

import "context"

// FreelanceEvaluator pays freelance editors who work mostly from the
// freelance queue a weight-keyed rate per task, split between co-owners
type FreelanceEvaluator struct {
	Rates map[int]float64
}

func (e *FreelanceEvaluator) Name() string { return "freelance" }

func (e *FreelanceEvaluator) Evaluate(ctx context.Context, state *RunState) {
	for _, editor := range state.Editors {
		if editor.Team != TeamFreelance || !editor.MajorityFromQueue() {
			continue
		}

		payout := 0.0
		for _, c := range editor.Contributions {
			payout += Split(e.Rates[c.Weight], c.Owners)
		}

		b := state.Bonus(editor.ID)
		b.FreelancePayout = Round2(payout)
		b.FreelanceTasks = len(editor.Contributions)
	}
}
