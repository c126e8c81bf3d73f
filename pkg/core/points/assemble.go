package points

import "sort"

// FinalizeTeams moves editors whose tasks mostly came from a freelance queue
// list into the freelance team. It returns the editors that changed team.
func FinalizeTeams(editors []*Editor) []*Editor {
	var flipped []*Editor
	for _, e := range editors {
		if e.Team != TeamFreelance && e.MajorityFromQueue() {
			e.Team = TeamFreelance
			flipped = append(flipped, e)
		}
	}
	return flipped
}

// RankEditors returns fixed-team editors ordered by points with 1-based ranks
// assigned, followed by every other editor ordered by points. Ties keep
// encounter order.
func RankEditors(editors []*Editor) (fixed []*Editor, others []*Editor) {
	for _, e := range editors {
		if e.Team == TeamFixed {
			fixed = append(fixed, e)
		} else {
			e.Rank = 0
			others = append(others, e)
		}
	}

	byPoints := func(list []*Editor) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Points > list[j].Points
		})
	}
	byPoints(fixed)
	byPoints(others)

	for i, e := range fixed {
		e.Rank = i + 1
	}
	return fixed, others
}

// RankBonus looks up the productivity bonus for a 1-based rank
func RankBonus(rank int, table []float64) float64 {
	if rank < 1 || rank > len(table) {
		return 0
	}
	return table[rank-1]
}

// Assembler combines the evaluator outputs into final bonus breakdowns
type Assembler struct {
	RankBonuses []float64
}

// Assemble ranks the editors and totals each breakdown by team. It returns
// the editors in report order.
func (a *Assembler) Assemble(state *RunState) []*Editor {
	fixed, others := RankEditors(state.Editors)

	for _, e := range fixed {
		b := state.Bonus(e.ID)
		b.Kind = BonusFixed
		b.Productivity = RankBonus(e.Rank, a.RankBonuses)
		b.FreelancePayout = 0
		b.FreelanceTasks = 0
		b.Total = Round2(b.Productivity + b.Streak + b.NoRework + b.Weekend)
	}

	for _, e := range others {
		b := state.Bonus(e.ID)
		if e.Team == TeamFreelance && b.FreelanceTasks > 0 {
			*b = Bonus{
				Kind:            BonusFreelance,
				FreelancePayout: b.FreelancePayout,
				FreelanceTasks:  b.FreelanceTasks,
				Total:           b.FreelancePayout,
			}
			continue
		}
		*b = Bonus{Kind: BonusNone}
	}

	return append(fixed, others...)
}
