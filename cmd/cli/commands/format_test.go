package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/editor-points/pkg/core/points"
)

func TestTeamColor(t *testing.T) {
	tests := []struct {
		team     points.Team
		expected string
	}{
		{points.TeamFixed, colorGreen},
		{points.TeamAIAssisted, colorYellow},
		{points.TeamFreelance, colorDim},
		{points.Team("unknown"), colorDim},
	}

	for _, tt := range tests {
		t.Run(string(tt.team), func(t *testing.T) {
			assert.Equal(t, tt.expected, teamColor(tt.team))
		})
	}
}

func TestRankLabel(t *testing.T) {
	assert.Equal(t, "-", rankLabel(0))
	assert.Equal(t, "#1", rankLabel(1))
	assert.Equal(t, "#12", rankLabel(12))
}
