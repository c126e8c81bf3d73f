package points

import (
	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/tasks"
)

// Team is the payment model an editor is evaluated under
type Team string

const (
	TeamFixed      Team = "fixed"
	TeamAIAssisted Team = "ai-assisted"
	TeamFreelance  Team = "freelance"
)

// RosterMatcher assigns a provisional team to an editor from the configured roster
type RosterMatcher struct {
	fixed      []string
	aiAssisted []string
}

// NewRosterMatcher builds a matcher from the roster configuration
func NewRosterMatcher(roster config.Roster) *RosterMatcher {
	return &RosterMatcher{
		fixed:      roster.Fixed,
		aiAssisted: roster.AIAssisted,
	}
}

// TeamFor returns the roster team for an editor display name. Names absent
// from both rosters are freelance.
func (m *RosterMatcher) TeamFor(name string) Team {
	switch {
	case tasks.MatchesAny(name, m.fixed):
		return TeamFixed
	case tasks.MatchesAny(name, m.aiAssisted):
		return TeamAIAssisted
	default:
		return TeamFreelance
	}
}
