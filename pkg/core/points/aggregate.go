package points

import (
	"math"
	"time"

	"github.com/jakechorley/editor-points/pkg/core/model"
	"github.com/jakechorley/editor-points/pkg/core/tasks"
)

// Reasons a task is listed as unmatched
const (
	ReasonUnresolvedWeight = "unresolved weight"
	ReasonNoEditor         = "no editor"
)

// Unmatched is a task that could not be attributed to any editor
type Unmatched struct {
	TaskID   string `json:"taskId"`
	TaskName string `json:"taskName"`
	Reason   string `json:"reason"`
}

// Contribution is one editor's share of one task
type Contribution struct {
	TaskID      string
	TaskName    string
	ListID      string
	Date        string // empty when the completion date could not be resolved
	Weight      int
	Owners      int
	Share       float64 // fraction of the task owned, 1/Owners
	Points      float64
	ProjectType string
	Rule        string
	Weekend     bool
	FromQueue   bool
}

// Editor accumulates everything attributed to one editor in a run
type Editor struct {
	ID        string
	Name      string
	Team      Team
	Points    float64
	TaskCount float64
	Daily     map[string]float64
	Rank      int

	Contributions []Contribution

	rawPoints float64
}

// TaskIDs returns the ids of every task the editor contributed to, in encounter order
func (e *Editor) TaskIDs() []string {
	ids := make([]string, len(e.Contributions))
	for i, c := range e.Contributions {
		ids[i] = c.TaskID
	}
	return ids
}

// QueueTasks counts contributions sourced from a freelance queue list
func (e *Editor) QueueTasks() int {
	count := 0
	for _, c := range e.Contributions {
		if c.FromQueue {
			count++
		}
	}
	return count
}

// MajorityFromQueue reports whether strictly more than half of the editor's
// tasks came from a freelance queue list
func (e *Editor) MajorityFromQueue() bool {
	return len(e.Contributions) > 0 && e.QueueTasks()*2 > len(e.Contributions)
}

// Aggregation is the result of attributing a task set to editors
type Aggregation struct {
	// Editors in first-encounter order
	Editors   []*Editor
	Unmatched []Unmatched

	TasksFetched      int
	TasksConsidered   int
	TasksOutOfWindow  int
	TasksNotCompleted int
	DuplicateTasks    int
	ResolvedWeight    float64

	byID map[string]*Editor
}

// Editor returns the aggregate for an editor id, or nil
func (a *Aggregation) Editor(id string) *Editor {
	return a.byID[id]
}

// TotalPoints is the sum of every editor's unrounded points, rounded once
func (a *Aggregation) TotalPoints() float64 {
	total := 0.0
	for _, e := range a.Editors {
		total += e.rawPoints
	}
	return Round1(total)
}

// Finalize rounds points and daily buckets to one decimal and task counts
// to the nearest integer. It must be called exactly once.
func (a *Aggregation) Finalize() {
	for _, e := range a.Editors {
		e.Points = Round1(e.rawPoints)
		e.TaskCount = math.Round(e.TaskCount)
		for day, value := range e.Daily {
			e.Daily[day] = Round1(value)
		}
	}
}

// Aggregator attributes weighted tasks to editors
type Aggregator struct {
	resolver          *tasks.Resolver
	classifier        *tasks.Classifier
	roster            *RosterMatcher
	month             Month
	completedStatuses []string
	weekendTags       []string
	holidays          map[string]bool
	freelanceLists    map[string]bool
}

// AggregatorOptions configures a single aggregation pass
type AggregatorOptions struct {
	Month             Month
	CompletedStatuses []string
	WeekendTags       []string
	Holidays          map[string]bool
	FreelanceLists    []string
}

// NewAggregator creates an aggregator for one month
func NewAggregator(resolver *tasks.Resolver, classifier *tasks.Classifier, roster *RosterMatcher, opts AggregatorOptions) *Aggregator {
	lists := make(map[string]bool, len(opts.FreelanceLists))
	for _, id := range opts.FreelanceLists {
		lists[id] = true
	}
	holidays := opts.Holidays
	if holidays == nil {
		holidays = map[string]bool{}
	}
	return &Aggregator{
		resolver:          resolver,
		classifier:        classifier,
		roster:            roster,
		month:             opts.Month,
		completedStatuses: opts.CompletedStatuses,
		weekendTags:       opts.WeekendTags,
		holidays:          holidays,
		freelanceLists:    lists,
	}
}

// Aggregate attributes every task to its editors. Tasks repeated by id are
// counted once; tasks dated outside the month are skipped.
func (ag *Aggregator) Aggregate(input []model.Task) *Aggregation {
	agg := &Aggregation{
		TasksFetched: len(input),
		byID:         make(map[string]*Editor),
	}
	seen := make(map[string]bool, len(input))
	loc := ag.resolver.Location()

	for i := range input {
		task := &input[i]

		if seen[task.ID] {
			agg.DuplicateTasks++
			continue
		}
		seen[task.ID] = true

		if len(ag.completedStatuses) > 0 && !tasks.EqualsAny(task.Status, ag.completedStatuses) {
			agg.TasksNotCompleted++
			continue
		}

		completed, hasDate := ag.resolver.CompletionDate(task)
		if hasDate && !ag.month.Contains(completed, loc) {
			agg.TasksOutOfWindow++
			continue
		}

		agg.TasksConsidered++

		classification, ok := ag.classifier.Classify(task)
		if !ok {
			agg.Unmatched = append(agg.Unmatched, Unmatched{TaskID: task.ID, TaskName: task.Name, Reason: ReasonUnresolvedWeight})
			continue
		}

		editors := ag.resolver.Editors(task)
		if len(editors) == 0 {
			agg.Unmatched = append(agg.Unmatched, Unmatched{TaskID: task.ID, TaskName: task.Name, Reason: ReasonNoEditor})
			continue
		}

		agg.ResolvedWeight += float64(classification.Weight)

		date := ""
		if hasDate {
			date = completed.Format(DateLayout)
		}
		contribution := Contribution{
			TaskID:      task.ID,
			TaskName:    task.Name,
			ListID:      task.ListID,
			Date:        date,
			Weight:      classification.Weight,
			Owners:      len(editors),
			Share:       Split(1, len(editors)),
			Points:      Split(float64(classification.Weight), len(editors)),
			ProjectType: classification.ProjectType,
			Rule:        classification.Rule,
			Weekend:     ag.isWeekendTask(task, completed, hasDate),
			FromQueue:   ag.freelanceLists[task.ListID],
		}

		for _, person := range editors {
			e := agg.byID[person.ID]
			if e == nil {
				e = &Editor{
					ID:    person.ID,
					Name:  person.Name,
					Team:  ag.roster.TeamFor(person.Name),
					Daily: make(map[string]float64),
				}
				agg.byID[person.ID] = e
				agg.Editors = append(agg.Editors, e)
			}
			e.rawPoints += contribution.Points
			e.TaskCount += contribution.Share
			if date != "" {
				e.Daily[date] += contribution.Points
			}
			e.Contributions = append(e.Contributions, contribution)
		}
	}

	return agg
}

// isWeekendTask reports whether a task carries a weekend tag or was delivered
// on a configured holiday
func (ag *Aggregator) isWeekendTask(task *model.Task, completed time.Time, hasDate bool) bool {
	for _, tag := range task.Tags {
		if tasks.MatchesAny(tag, ag.weekendTags) {
			return true
		}
	}
	return hasDate && ag.holidays[completed.Format(DateLayout)]
}
