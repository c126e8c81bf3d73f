// Package points computes monthly editor points, rankings and incentive
// bonuses from a materialised set of tracker tasks.
//
// A run is a sequential pipeline: tasks are attributed to editors, the
// aggregates are rounded once, teams are finalised, then each Evaluator adds
// its bonus component before the Assembler ranks editors and totals bonuses.
package points

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
	"github.com/jakechorley/editor-points/pkg/core/tasks"
)

// Engine runs the points pipeline for one incentive configuration
type Engine struct {
	inc        *config.Incentives
	loc        *time.Location
	resolver   *tasks.Resolver
	classifier *tasks.Classifier
	roster     *RosterMatcher
	evaluators []Evaluator
	assembler  *Assembler
	logger     *zap.Logger
}

// RunInput is everything a single run needs besides configuration
type RunInput struct {
	RunID          string
	Month          Month
	Tasks          []model.Task
	Lists          []string
	FreelanceLists []string
	GeneratedAt    time.Time
}

// Result is the report plus the intermediate state it was built from
type Result struct {
	Report         *Report
	Aggregation    *Aggregation
	State          *RunState
	FlippedEditors []string
}

// NewEngine compiles the incentive configuration into a pipeline. lookup may
// be nil, in which case the no-rework stage is skipped.
func NewEngine(inc *config.Incentives, loc *time.Location, lookup StatusHistoryLookup, logger *zap.Logger) (*Engine, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := tasks.NewResolver(inc, loc)
	classifier, err := tasks.NewClassifier(resolver, inc)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	return &Engine{
		inc:        inc,
		loc:        loc,
		resolver:   resolver,
		classifier: classifier,
		roster:     NewRosterMatcher(inc.Roster),
		evaluators: []Evaluator{
			&StreakEvaluator{
				Threshold:   inc.Threshold(),
				BonusPerDay: inc.StreakBonus(),
			},
			&ReworkEvaluator{
				Lookup:             lookup,
				AdjustmentStatuses: inc.AdjustmentStatuses,
				BonusPerTask:       inc.NoReworkBonus(),
				BatchSize:          inc.StatusLookupBatchSize,
				Cap:                inc.StatusLookupCap,
				Logger:             logger,
			},
			&WeekendEvaluator{Rates: inc.WeekendBonuses},
			&FreelanceEvaluator{Rates: inc.FreelancePayouts},
		},
		assembler: &Assembler{RankBonuses: inc.RankBonuses},
		logger:    logger,
	}, nil
}

// Run computes the report for one month. It only fails on configuration
// errors; per-task and per-batch problems degrade the report instead.
func (e *Engine) Run(ctx context.Context, in RunInput) (*Result, error) {
	holidays, err := HolidayDates(e.inc.HolidayRules, in.Month, e.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to expand holiday calendar: %w", err)
	}

	aggregator := NewAggregator(e.resolver, e.classifier, e.roster, AggregatorOptions{
		Month:             in.Month,
		CompletedStatuses: e.inc.CompletedStatuses,
		WeekendTags:       e.inc.WeekendTags,
		Holidays:          holidays,
		FreelanceLists:    in.FreelanceLists,
	})

	agg := aggregator.Aggregate(in.Tasks)
	agg.Finalize()
	e.logger.Debug("Tasks aggregated",
		zap.Int("editors", len(agg.Editors)),
		zap.Int("considered", agg.TasksConsidered),
		zap.Int("unmatched", len(agg.Unmatched)),
		zap.Int("outOfWindow", agg.TasksOutOfWindow))

	var flipped []string
	for _, editor := range FinalizeTeams(agg.Editors) {
		flipped = append(flipped, editor.ID)
		e.logger.Info("Editor moved to freelance team",
			zap.String("editor", editor.Name),
			zap.Int("queueTasks", editor.QueueTasks()),
			zap.Int("tasks", len(editor.Contributions)))
	}

	state := NewRunState(in.Month, agg.Editors)
	for _, evaluator := range e.evaluators {
		evaluator.Evaluate(ctx, state)
		e.logger.Debug("Evaluator finished", zap.String("evaluator", evaluator.Name()))
	}
	ordered := e.assembler.Assemble(state)

	report := e.buildReport(in, agg, state, ordered)
	return &Result{
		Report:         report,
		Aggregation:    agg,
		State:          state,
		FlippedEditors: flipped,
	}, nil
}

func (e *Engine) buildReport(in RunInput, agg *Aggregation, state *RunState, ordered []*Editor) *Report {
	failedBatches := 0
	for _, batch := range state.LookupBatches {
		if batch.Err != nil {
			failedBatches++
		}
	}

	report := &Report{
		Meta: Meta{
			RunID:                     in.RunID,
			Month:                     in.Month.String(),
			GeneratedAt:               in.GeneratedAt,
			Timezone:                  e.loc.String(),
			ConfigVersion:             e.inc.Version,
			Lists:                     in.Lists,
			Rules:                     e.classifier.RuleNames(),
			TasksFetched:              agg.TasksFetched,
			TasksConsidered:           agg.TasksConsidered,
			TasksOutOfWindow:          agg.TasksOutOfWindow,
			TasksNotCompleted:         agg.TasksNotCompleted,
			DuplicateTasks:            agg.DuplicateTasks,
			DailyThreshold:            e.inc.Threshold(),
			StreakBonusPerDay:         e.inc.StreakBonus(),
			NoReworkBonusPerTask:      e.inc.NoReworkBonus(),
			RankBonuses:               e.inc.RankBonuses,
			NoReworkSkipped:           state.NoReworkSkipped,
			StatusLookupBatches:       len(state.LookupBatches),
			StatusLookupFailedBatches: failedBatches,
		},
		Editors:    make([]EditorReport, 0, len(ordered)),
		StreakDays: make(map[string][]StreakDay),
		NoRework:   make(map[string]NoReworkDetail),
		Unmatched:  agg.Unmatched,
	}
	if report.Unmatched == nil {
		report.Unmatched = []Unmatched{}
	}

	days := in.Month.Days(e.loc)
	totalBonus := 0.0
	for _, editor := range ordered {
		bonus := *state.Bonus(editor.ID)
		report.Editors = append(report.Editors, buildEditorReport(editor, bonus, days))
		totalBonus += bonus.Total

		if streak, ok := state.StreakDays[editor.ID]; ok {
			report.StreakDays[editor.ID] = streak
		}
		if detail, ok := state.NoRework[editor.ID]; ok {
			report.NoRework[editor.ID] = detail
		}
		if editor.Team == TeamFixed {
			report.Summary.Ranking = append(report.Summary.Ranking, RankingEntry{
				Rank:   editor.Rank,
				Name:   editor.Name,
				Points: editor.Points,
				Bonus:  bonus.Total,
			})
		}
	}

	report.Summary.TotalPoints = agg.TotalPoints()
	report.Summary.TotalEditors = len(ordered)
	report.Summary.TotalBonus = Round2(totalBonus)
	if report.Summary.Ranking == nil {
		report.Summary.Ranking = []RankingEntry{}
	}

	return report
}
