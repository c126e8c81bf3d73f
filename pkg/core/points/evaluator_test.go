package points

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/model"
)

func TestStreakEvaluator_ThresholdScenario(t *testing.T) {
	ana := fixedEditor("Ana")
	ana.Daily = map[string]float64{"2025-03-01": 5, "2025-03-02": 9, "2025-03-03": 3}
	state := NewRunState(march2025, []*Editor{ana})

	(&StreakEvaluator{Threshold: 8, BonusPerDay: 50}).Evaluate(context.Background(), state)

	assert.Equal(t, []StreakDay{{Date: "2025-03-02", Points: 9}}, state.StreakDays[ana.ID])
	assert.Equal(t, 1, state.Bonus(ana.ID).StreakDays)
	assert.Equal(t, 50.0, state.Bonus(ana.ID).Streak)
}

func TestStreakEvaluator_StrictThreshold(t *testing.T) {
	ana := fixedEditor("Ana")
	ana.Daily = map[string]float64{"2025-03-05": 8.1, "2025-03-01": 8.0, "2025-03-02": 12}
	state := NewRunState(march2025, []*Editor{ana})

	(&StreakEvaluator{Threshold: 8, BonusPerDay: 50}).Evaluate(context.Background(), state)

	days := state.StreakDays[ana.ID]
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-02", days[0].Date, "ascending by date")
	assert.Equal(t, "2025-03-05", days[1].Date)
	assert.Equal(t, 100.0, state.Bonus(ana.ID).Streak)
}

func TestStreakEvaluator_FixedTeamOnly(t *testing.T) {
	fabio := &Editor{ID: "u-fabio", Name: "Fabio", Team: TeamFreelance, Daily: map[string]float64{"2025-03-01": 20}}
	state := NewRunState(march2025, []*Editor{fabio})

	(&StreakEvaluator{Threshold: 8, BonusPerDay: 50}).Evaluate(context.Background(), state)

	assert.NotContains(t, state.StreakDays, fabio.ID)
	assert.Equal(t, 0.0, state.Bonus(fabio.ID).Streak)
}

func newReworkEvaluator(lookup StatusHistoryLookup) *ReworkEvaluator {
	return &ReworkEvaluator{
		Lookup:             lookup,
		AdjustmentStatuses: []string{"em ajuste", "needs adjustment"},
		BonusPerTask:       10,
		BatchSize:          100,
		Cap:                5000,
		Logger:             zap.NewNop(),
	}
}

func taskIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t-%03d", i)
	}
	return ids
}

func TestReworkEvaluator_SecondBatchFails(t *testing.T) {
	ids := taskIDs(150)
	ana := fixedEditor("Ana", ids...)
	lookup := &fakeLookup{
		histories:      map[string][]model.StatusTransition{"t-005": adjustedHistory()},
		cleanByDefault: true,
		failCalls:      map[int]error{1: errors.New("rate limited")},
	}
	state := NewRunState(march2025, []*Editor{ana})

	newReworkEvaluator(lookup).Evaluate(context.Background(), state)

	require.Len(t, lookup.calls, 2)
	assert.Len(t, lookup.calls[0], 100)
	assert.Len(t, lookup.calls[1], 50)

	require.Len(t, state.LookupBatches, 2)
	assert.NoError(t, state.LookupBatches[0].Err)
	assert.Error(t, state.LookupBatches[1].Err)

	detail := state.NoRework[ana.ID]
	assert.Equal(t, 150, detail.Total)
	assert.Equal(t, 149, detail.Qualifying, "unverified tasks stay eligible")
	assert.Equal(t, []string{"t-005"}, detail.Adjusted)
	assert.Equal(t, ids[100:], detail.Unverified)
	assert.Equal(t, 1490.0, state.Bonus(ana.ID).NoRework)
	assert.False(t, state.NoReworkSkipped)
}

func TestReworkEvaluator_Verify(t *testing.T) {
	lookup := &fakeLookup{
		histories: map[string][]model.StatusTransition{
			"clean":    {{Status: "complete"}},
			"adjusted": {{Status: "Needs Adjustment"}},
			"empty":    {},
		},
	}

	got, batches := newReworkEvaluator(lookup).Verify(context.Background(), []string{"clean", "adjusted", "empty", "missing"})

	assert.Equal(t, map[string]Verification{
		"clean":    VerifiedClean,
		"adjusted": VerifiedAdjusted,
		"empty":    VerifiedClean,
		"missing":  Unverified,
	}, got)
	assert.Len(t, batches, 1)
}

func TestReworkEvaluator_BatchSizeNeverExceedsLimit(t *testing.T) {
	lookup := &fakeLookup{cleanByDefault: true}
	e := newReworkEvaluator(lookup)
	e.BatchSize = 500

	e.Verify(context.Background(), taskIDs(250))

	require.Len(t, lookup.calls, 3)
	for _, call := range lookup.calls {
		assert.LessOrEqual(t, len(call), 100)
	}
}

func TestReworkEvaluator_CapSkipsStage(t *testing.T) {
	lookup := &fakeLookup{cleanByDefault: true}
	e := newReworkEvaluator(lookup)
	e.Cap = 10
	ana := fixedEditor("Ana", taskIDs(11)...)
	state := NewRunState(march2025, []*Editor{ana})

	e.Evaluate(context.Background(), state)

	assert.Empty(t, lookup.calls)
	assert.True(t, state.NoReworkSkipped)
	assert.Equal(t, 0.0, state.Bonus(ana.ID).NoRework)
	assert.Equal(t, 11, state.NoRework[ana.ID].Total)
}

func TestReworkEvaluator_CancelledContextLeavesTasksUnverified(t *testing.T) {
	lookup := &fakeLookup{cleanByDefault: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, batches := newReworkEvaluator(lookup).Verify(ctx, taskIDs(3))

	assert.Empty(t, lookup.calls)
	require.Len(t, batches, 1)
	assert.ErrorIs(t, batches[0].Err, context.Canceled)
	for _, v := range got {
		assert.Equal(t, Unverified, v)
	}
}

func TestReworkEvaluator_SharedTasksLookedUpOnce(t *testing.T) {
	lookup := &fakeLookup{cleanByDefault: true}
	ana := fixedEditor("Ana", "t1", "t2")
	bruno := fixedEditor("Bruno", "t2", "t3")
	fabio := &Editor{ID: "u-fabio", Name: "Fabio", Team: TeamFreelance, Contributions: []Contribution{{TaskID: "t9"}}}
	state := NewRunState(march2025, []*Editor{ana, bruno, fabio})

	newReworkEvaluator(lookup).Evaluate(context.Background(), state)

	require.Len(t, lookup.calls, 1)
	assert.Equal(t, []string{"t1", "t2", "t3"}, lookup.calls[0])
	assert.Equal(t, 20.0, state.Bonus(ana.ID).NoRework)
	assert.Equal(t, 20.0, state.Bonus(bruno.ID).NoRework)
	assert.NotContains(t, state.NoRework, fabio.ID)
}

func TestReworkEvaluator_AdjustmentNeverIncreasesBonus(t *testing.T) {
	ids := taskIDs(5)
	run := func(adjusted ...string) float64 {
		histories := map[string][]model.StatusTransition{}
		for _, id := range adjusted {
			histories[id] = adjustedHistory()
		}
		ana := fixedEditor("Ana", ids...)
		state := NewRunState(march2025, []*Editor{ana})
		newReworkEvaluator(&fakeLookup{histories: histories, cleanByDefault: true}).Evaluate(context.Background(), state)
		return state.Bonus(ana.ID).NoRework
	}

	previous := run()
	for i := range ids {
		current := run(ids[:i+1]...)
		assert.LessOrEqual(t, current, previous)
		previous = current
	}
	assert.Equal(t, 0.0, previous)
}

func TestReworkEvaluator_NilLookupSkips(t *testing.T) {
	ana := fixedEditor("Ana", "t1")
	state := NewRunState(march2025, []*Editor{ana})

	newReworkEvaluator(nil).Evaluate(context.Background(), state)

	assert.True(t, state.NoReworkSkipped)
	assert.Equal(t, 0.0, state.Bonus(ana.ID).NoRework)
}

func TestClassifyHistory(t *testing.T) {
	statuses := []string{"em ajuste"}

	assert.Equal(t, Unverified, ClassifyHistory(nil, statuses))
	assert.Equal(t, VerifiedClean, ClassifyHistory([]model.StatusTransition{}, statuses))
	assert.Equal(t, VerifiedAdjusted, ClassifyHistory(adjustedHistory(), statuses))
	assert.True(t, Unverified.Eligible())
	assert.True(t, VerifiedClean.Eligible())
	assert.False(t, VerifiedAdjusted.Eligible())
}

func TestWeekendEvaluator(t *testing.T) {
	ana := fixedEditor("Ana")
	ana.Contributions = []Contribution{
		{TaskID: "t1", Weight: 3, Owners: 2, Share: 0.5, Weekend: true},
		{TaskID: "t2", Weight: 5, Owners: 1, Share: 1, Weekend: true},
		{TaskID: "t3", Weight: 5, Owners: 1, Share: 1},
	}
	diego := &Editor{ID: "u-diego", Name: "Diego", Team: TeamAIAssisted, Contributions: []Contribution{{TaskID: "t4", Weight: 5, Owners: 1, Share: 1, Weekend: true}}}
	state := NewRunState(march2025, []*Editor{ana, diego})

	(&WeekendEvaluator{Rates: map[int]float64{3: 30, 5: 50}}).Evaluate(context.Background(), state)

	assert.Equal(t, 65.0, state.Bonus(ana.ID).Weekend)
	assert.Equal(t, 2, state.Bonus(ana.ID).WeekendTasks)
	assert.Equal(t, 0.0, state.Bonus(diego.ID).Weekend)
}

func TestFreelanceEvaluator(t *testing.T) {
	queue := func(id string, weight, owners int) Contribution {
		return Contribution{TaskID: id, Weight: weight, Owners: owners, Share: 1 / float64(owners), FromQueue: true}
	}
	fabio := &Editor{ID: "u-fabio", Name: "Fabio", Team: TeamFreelance, Contributions: []Contribution{
		queue("t1", 2, 1), queue("t2", 4, 2), {TaskID: "t3", Weight: 1, Owners: 1, Share: 1},
	}}
	gabi := &Editor{ID: "u-gabi", Name: "Gabi", Team: TeamFreelance, Contributions: []Contribution{
		queue("t4", 2, 1), {TaskID: "t5", Weight: 1, Owners: 1, Share: 1},
	}}
	state := NewRunState(march2025, []*Editor{fabio, gabi})

	(&FreelanceEvaluator{Rates: map[int]float64{1: 40, 2: 80, 4: 160}}).Evaluate(context.Background(), state)

	assert.Equal(t, 80.0+80.0+40.0, state.Bonus(fabio.ID).FreelancePayout)
	assert.Equal(t, 3, state.Bonus(fabio.ID).FreelanceTasks)
	assert.Equal(t, 0.0, state.Bonus(gabi.ID).FreelancePayout, "half from the queue is not a majority")
}
