package points

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/model"
	"github.com/jakechorley/editor-points/pkg/core/tasks"
)

// Verification is the outcome of checking one task's status history
type Verification string

const (
	// VerifiedClean means the history was read and never entered an adjustment status
	VerifiedClean Verification = "clean"
	// VerifiedAdjusted means the task passed through an adjustment status
	VerifiedAdjusted Verification = "adjusted"
	// Unverified means the history could not be read
	Unverified Verification = "unverified"
)

// Eligible reports whether the task counts toward the no-rework bonus.
// Unverified tasks are given the benefit of the doubt.
func (v Verification) Eligible() bool {
	return v != VerifiedAdjusted
}

// StatusHistoryLookup fetches status histories for a batch of task ids.
// Ids missing from the returned map are treated as unverified.
type StatusHistoryLookup interface {
	StatusHistories(ctx context.Context, taskIDs []string) (map[string][]model.StatusTransition, error)
}

// BatchReport records the outcome of one lookup batch
type BatchReport struct {
	Size int
	Err  error
}

// NoReworkDetail is an editor's no-rework outcome
type NoReworkDetail struct {
	Qualifying int      `json:"qualifying"`
	Total      int      `json:"total"`
	Bonus      float64  `json:"bonus"`
	Adjusted   []string `json:"adjusted,omitempty"`
	Unverified []string `json:"unverified,omitempty"`
}

// ReworkEvaluator pays fixed-team editors a flat amount per owned task that
// never went back for adjustment
type ReworkEvaluator struct {
	Lookup             StatusHistoryLookup
	AdjustmentStatuses []string
	BonusPerTask       float64
	BatchSize          int
	Cap                int
	Logger             *zap.Logger
}

func (e *ReworkEvaluator) Name() string { return "no-rework" }

func (e *ReworkEvaluator) Evaluate(ctx context.Context, state *RunState) {
	var fixed []*Editor
	var ids []string
	seen := make(map[string]bool)
	for _, editor := range state.Editors {
		if editor.Team != TeamFixed {
			continue
		}
		fixed = append(fixed, editor)
		for _, id := range editor.TaskIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(fixed) == 0 {
		return
	}

	if e.Lookup == nil || (e.Cap > 0 && len(ids) > e.Cap) {
		e.logger().Warn("Skipping no-rework verification",
			zap.Int("taskIds", len(ids)),
			zap.Int("cap", e.Cap),
			zap.Bool("lookupConfigured", e.Lookup != nil))
		state.NoReworkSkipped = true
		for _, editor := range fixed {
			state.NoRework[editor.ID] = NoReworkDetail{Total: len(editor.Contributions)}
			b := state.Bonus(editor.ID)
			b.NoRework = 0
			b.NoReworkTasks = 0
		}
		return
	}

	verifications, batches := e.Verify(ctx, ids)
	state.LookupBatches = append(state.LookupBatches, batches...)

	for _, editor := range fixed {
		detail := NoReworkDetail{}
		for _, id := range editor.TaskIDs() {
			detail.Total++
			v, ok := verifications[id]
			if !ok {
				v = Unverified
			}
			switch v {
			case VerifiedAdjusted:
				detail.Adjusted = append(detail.Adjusted, id)
			case Unverified:
				detail.Unverified = append(detail.Unverified, id)
			}
			if v.Eligible() {
				detail.Qualifying++
			}
		}
		detail.Bonus = float64(detail.Qualifying) * e.BonusPerTask
		state.NoRework[editor.ID] = detail

		b := state.Bonus(editor.ID)
		b.NoRework = detail.Bonus
		b.NoReworkTasks = detail.Qualifying
	}
}

// Verify classifies every id through sequential lookup batches. A failed
// batch marks only its own ids unverified.
func (e *ReworkEvaluator) Verify(ctx context.Context, ids []string) (map[string]Verification, []BatchReport) {
	size := e.BatchSize
	if size <= 0 || size > 100 {
		size = 100
	}

	verifications := make(map[string]Verification, len(ids))
	var reports []BatchReport

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batch := ids[start:end]

		histories, err := e.lookupBatch(ctx, batch)
		reports = append(reports, BatchReport{Size: len(batch), Err: err})
		if err != nil {
			e.logger().Warn("Status history batch failed, marking tasks unverified",
				zap.Int("batchStart", start),
				zap.Int("batchSize", len(batch)),
				zap.Error(err))
			for _, id := range batch {
				verifications[id] = Unverified
			}
			continue
		}

		for _, id := range batch {
			history, ok := histories[id]
			if !ok {
				verifications[id] = Unverified
				continue
			}
			verifications[id] = ClassifyHistory(history, e.AdjustmentStatuses)
		}
	}

	return verifications, reports
}

func (e *ReworkEvaluator) lookupBatch(ctx context.Context, batch []string) (histories map[string][]model.StatusTransition, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("status lookup not attempted: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			histories = nil
			err = fmt.Errorf("status lookup panicked: %v", r)
		}
	}()
	return e.Lookup.StatusHistories(ctx, batch)
}

func (e *ReworkEvaluator) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// ClassifyHistory reports whether a history ever entered an adjustment status.
// A nil history is malformed and unverified; an empty one is clean.
func ClassifyHistory(history []model.StatusTransition, adjustmentStatuses []string) Verification {
	if history == nil {
		return Unverified
	}
	for _, transition := range history {
		if tasks.EqualsAny(transition.Status, adjustmentStatuses) {
			return VerifiedAdjusted
		}
	}
	return VerifiedClean
}
