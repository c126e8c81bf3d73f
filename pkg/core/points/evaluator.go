package points

import "context"

// BonusKind selects which breakdown applies to an editor
type BonusKind string

const (
	BonusFixed     BonusKind = "fixed"
	BonusFreelance BonusKind = "freelance"
	BonusNone      BonusKind = "none"
)

// Bonus is an editor's incentive breakdown. Only the components of its Kind are non-zero.
type Bonus struct {
	Kind            BonusKind `json:"kind"`
	Productivity    float64   `json:"productivity"`
	Streak          float64   `json:"streak"`
	StreakDays      int       `json:"streakDays"`
	NoRework        float64   `json:"noRework"`
	NoReworkTasks   int       `json:"noReworkTasks"`
	Weekend         float64   `json:"weekend"`
	WeekendTasks    int       `json:"weekendTasks"`
	FreelancePayout float64   `json:"freelancePayout"`
	FreelanceTasks  int       `json:"freelanceTasks"`
	Total           float64   `json:"total"`
}

// RunState is shared by the evaluators of one run. Editors are finalised
// before any evaluator sees them.
type RunState struct {
	Month   Month
	Editors []*Editor

	Bonuses         map[string]*Bonus
	StreakDays      map[string][]StreakDay
	NoRework        map[string]NoReworkDetail
	NoReworkSkipped bool
	LookupBatches   []BatchReport
}

// NewRunState creates an empty state over finalised editors
func NewRunState(month Month, editors []*Editor) *RunState {
	return &RunState{
		Month:      month,
		Editors:    editors,
		Bonuses:    make(map[string]*Bonus, len(editors)),
		StreakDays: make(map[string][]StreakDay),
		NoRework:   make(map[string]NoReworkDetail),
	}
}

// Bonus returns the breakdown for an editor, creating it on first use
func (s *RunState) Bonus(editorID string) *Bonus {
	b, ok := s.Bonuses[editorID]
	if !ok {
		b = &Bonus{Kind: BonusNone}
		s.Bonuses[editorID] = b
	}
	return b
}

// Evaluator computes one bonus component. Evaluators never fail a run:
// degraded inputs reduce their output instead.
type Evaluator interface {
	// Name identifies the evaluator in logs
	Name() string

	// Evaluate writes its component into the state's bonus breakdowns
	Evaluate(ctx context.Context, state *RunState)
}
