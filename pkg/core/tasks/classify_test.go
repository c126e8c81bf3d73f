package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	inc := testIncentives()
	c, err := NewClassifier(NewResolver(inc, time.UTC), inc)
	require.NoError(t, err)
	return c
}

func TestClassifier_RuleOrder(t *testing.T) {
	c := newTestClassifier(t)
	assert.Equal(t, []string{
		RuleExplicitWeight,
		RuleProductVocabulary,
		RuleProductPattern,
		RuleClientCode,
		RuleNamePattern,
	}, c.RuleNames())
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name   string
		task   model.Task
		wantOK bool
		want   Classification
	}{
		{
			name:   "explicit weight wins over product",
			task:   model.Task{Name: "VSL cliente X", CustomFields: []model.CustomField{numberField("Peso", 2), textField("Produto", "VSL")}},
			wantOK: true,
			want:   Classification{Weight: 2, Rule: RuleExplicitWeight},
		},
		{
			name:   "explicit weight leading digits from drop-down label",
			task:   model.Task{CustomFields: []model.CustomField{dropDownField("Peso", 0, "3 - Médio")}},
			wantOK: true,
			want:   Classification{Weight: 3, Rule: RuleExplicitWeight},
		},
		{
			name:   "zero explicit weight falls through to product",
			task:   model.Task{CustomFields: []model.CustomField{numberField("Peso", 0), textField("Produto", "Motion Graphics")}},
			wantOK: true,
			want:   Classification{Weight: 4, ProjectType: "motion", Rule: RuleProductVocabulary},
		},
		{
			name:   "product vocabulary ignores accents and case",
			task:   model.Task{CustomFields: []model.CustomField{textField("📦 Produto", "YouTube Longo")}},
			wantOK: true,
			want:   Classification{Weight: 3, ProjectType: "youtube", Rule: RuleProductVocabulary},
		},
		{
			name:   "supplementary product regex",
			task:   model.Task{CustomFields: []model.CustomField{textField("Produto", "Campanha React")}},
			wantOK: true,
			want:   Classification{Weight: 2, ProjectType: "ad_creative", Rule: RuleProductPattern},
		},
		{
			name:   "client code from task name tag",
			task:   model.Task{Name: "[Acme] [Lote 2] [10] [VS] Roteiro novo"},
			wantOK: true,
			want:   Classification{Weight: 5, ProjectType: "vsl", Rule: RuleClientCode},
		},
		{
			name:   "unknown client code falls through to keywords",
			task:   model.Task{Name: "[Acme] [Lote 2] [10] [ZZ] corte reels"},
			wantOK: true,
			want:   Classification{Weight: 1, ProjectType: "reels", Rule: RuleNamePattern},
		},
		{
			name:   "first keyword pattern wins",
			task:   model.Task{Name: "Animação para VSL"},
			wantOK: true,
			want:   Classification{Weight: 5, ProjectType: "vsl", Rule: RuleNamePattern},
		},
		{
			name:   "nothing matches",
			task:   model.Task{Name: "Reunião de alinhamento"},
			wantOK: false,
			want:   Classification{ProjectType: ProjectTypeUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(&tt.task)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_NegativeExplicitWeightIgnored(t *testing.T) {
	c := newTestClassifier(t)
	task := &model.Task{Name: "Reunião", CustomFields: []model.CustomField{textField("Peso", "-3")}}

	_, ok := c.Classify(task)
	assert.False(t, ok)
}

func TestNewClassifier_InvalidPattern(t *testing.T) {
	inc := testIncentives()
	inc.NamePatterns = []config.PatternEntry{{Pattern: "([", Type: "vsl"}}

	_, err := NewClassifier(NewResolver(inc, time.UTC), inc)
	assert.Error(t, err)
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"3", 3, true},
		{" 12 pts", 12, true},
		{"2.5", 2, true},
		{"pts 3", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseLeadingInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
