package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/teambition/rrule-go"
)

// MaxStatusLookupBatch is the largest number of task ids the tracker accepts
// in a single status-history request
const MaxStatusLookupBatch = 100

// FieldNames lists the candidate custom-field names for each logical field.
// Candidates are tried in order.
type FieldNames struct {
	Weight         []string `yaml:"weight,omitempty"`
	Product        []string `yaml:"product,omitempty"`
	Editor         []string `yaml:"editor,omitempty"`
	CompletionDate []string `yaml:"completionDate,omitempty"`
}

// Roster holds the name fragments that place an editor in a team.
// Editors matching neither list are freelance.
type Roster struct {
	Fixed      []string `yaml:"fixed,omitempty"`
	AIAssisted []string `yaml:"aiAssisted,omitempty"`
}

// VocabularyEntry maps a product-field fragment to a project type
type VocabularyEntry struct {
	Match string `yaml:"match" validate:"required"`
	Type  string `yaml:"type" validate:"required"`
}

// PatternEntry maps a regular expression to a project type
type PatternEntry struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
}

// Incentives is the versioned set of rosters, classification vocabularies
// and bonus tables that drive a report run
type Incentives struct {
	Version string `yaml:"version,omitempty"`

	Fields  FieldNames        `yaml:"fields,omitempty"`
	Roster  Roster            `yaml:"roster,omitempty"`
	Aliases map[string]string `yaml:"aliases,omitempty"`

	ProjectTypes      map[string]int    `yaml:"projectTypes,omitempty"`
	ProductVocabulary []VocabularyEntry `yaml:"productVocabulary,omitempty" validate:"dive"`
	ProductPatterns   []PatternEntry    `yaml:"productPatterns,omitempty" validate:"dive"`
	ClientCodes       map[string]string `yaml:"clientCodes,omitempty"`
	NamePatterns      []PatternEntry    `yaml:"namePatterns,omitempty" validate:"dive"`

	// Scalar amounts are pointers so an explicit 0 in the file is kept
	DailyThreshold       *float64        `yaml:"dailyThreshold,omitempty" validate:"omitempty,min=0"`
	StreakBonusPerDay    *float64        `yaml:"streakBonusPerDay,omitempty" validate:"omitempty,min=0"`
	RankBonuses          []float64       `yaml:"rankBonuses,omitempty" validate:"dive,min=0"`
	NoReworkBonusPerTask *float64        `yaml:"noReworkBonusPerTask,omitempty" validate:"omitempty,min=0"`
	AdjustmentStatuses   []string        `yaml:"adjustmentStatuses,omitempty"`
	WeekendTags          []string        `yaml:"weekendTags,omitempty"`
	WeekendBonuses       map[int]float64 `yaml:"weekendBonuses,omitempty"`
	FreelancePayouts     map[int]float64 `yaml:"freelancePayouts,omitempty"`
	CompletedStatuses    []string        `yaml:"completedStatuses,omitempty"`
	HolidayRules         []string        `yaml:"holidayRules,omitempty"`

	StatusLookupBatchSize int `yaml:"statusLookupBatchSize,omitempty" validate:"min=0,max=100"`
	StatusLookupCap       int `yaml:"statusLookupCap,omitempty" validate:"min=0"`
}

// DefaultIncentives returns the production tables used when the config file
// leaves a section empty
func DefaultIncentives() Incentives {
	return Incentives{
		Version: "2026.1",
		Fields: FieldNames{
			Weight:         []string{"Peso", "Weight", "Pontos"},
			Product:        []string{"Produto", "Product"},
			Editor:         []string{"Editor", "Editores"},
			CompletionDate: []string{"Data de Entrega", "Completion Date", "Entrega"},
		},
		ProjectTypes: map[string]int{
			"reels":       1,
			"ad_creative": 2,
			"youtube":     3,
			"motion":      4,
			"vsl":         5,
		},
		ProductVocabulary: []VocabularyEntry{
			{Match: "vsl", Type: "vsl"},
			{Match: "motion", Type: "motion"},
			{Match: "youtube", Type: "youtube"},
			{Match: "reels", Type: "reels"},
			{Match: "shorts", Type: "reels"},
			{Match: "criativo", Type: "ad_creative"},
			{Match: "creative", Type: "ad_creative"},
		},
		ProductPatterns: []PatternEntry{
			{Pattern: `(?i)\b(react|cpg)\b`, Type: "ad_creative"},
			{Pattern: `(?i)\byt\b`, Type: "youtube"},
		},
		ClientCodes: map[string]string{
			"VS": "vsl",
			"MG": "motion",
			"YT": "youtube",
			"RL": "reels",
			"AD": "ad_creative",
		},
		NamePatterns: []PatternEntry{
			{Pattern: `(?i)\bvsl\b`, Type: "vsl"},
			{Pattern: `(?i)motion|anima[cç][aã]o`, Type: "motion"},
			{Pattern: `(?i)youtube|\byt\b`, Type: "youtube"},
			{Pattern: `(?i)reels?|shorts|tiktok`, Type: "reels"},
			{Pattern: `(?i)\bads?\b|criativo|creative`, Type: "ad_creative"},
		},
		DailyThreshold:        Float64(8),
		StreakBonusPerDay:     Float64(50),
		RankBonuses:           []float64{500, 300, 150},
		NoReworkBonusPerTask:  Float64(10),
		AdjustmentStatuses:    []string{"ajuste", "needs adjustment", "em ajuste"},
		WeekendTags:           []string{"fds", "weekend", "feriado", "holiday"},
		WeekendBonuses:        map[int]float64{1: 10, 2: 20, 3: 30, 4: 40, 5: 50},
		FreelancePayouts:      map[int]float64{1: 40, 2: 80, 3: 120, 4: 160, 5: 200},
		StatusLookupBatchSize: MaxStatusLookupBatch,
		StatusLookupCap:       5000,
	}
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

func valueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Threshold returns the daily points threshold, 0 when unset
func (inc *Incentives) Threshold() float64 {
	return valueOf(inc.DailyThreshold)
}

// StreakBonus returns the bonus paid per streak day, 0 when unset
func (inc *Incentives) StreakBonus() float64 {
	return valueOf(inc.StreakBonusPerDay)
}

// NoReworkBonus returns the bonus paid per task without rework, 0 when unset
func (inc *Incentives) NoReworkBonus() float64 {
	return valueOf(inc.NoReworkBonusPerTask)
}

// ApplyDefaults fills every empty section from DefaultIncentives.
// Sections the config sets are kept as they are, explicit zeros included.
func (inc *Incentives) ApplyDefaults() {
	def := DefaultIncentives()

	if inc.Version == "" {
		inc.Version = def.Version
	}
	if len(inc.Fields.Weight) == 0 {
		inc.Fields.Weight = def.Fields.Weight
	}
	if len(inc.Fields.Product) == 0 {
		inc.Fields.Product = def.Fields.Product
	}
	if len(inc.Fields.Editor) == 0 {
		inc.Fields.Editor = def.Fields.Editor
	}
	if len(inc.Fields.CompletionDate) == 0 {
		inc.Fields.CompletionDate = def.Fields.CompletionDate
	}
	if len(inc.ProjectTypes) == 0 {
		inc.ProjectTypes = def.ProjectTypes
	}
	if len(inc.ProductVocabulary) == 0 {
		inc.ProductVocabulary = def.ProductVocabulary
	}
	if len(inc.ProductPatterns) == 0 {
		inc.ProductPatterns = def.ProductPatterns
	}
	if len(inc.ClientCodes) == 0 {
		inc.ClientCodes = def.ClientCodes
	}
	if len(inc.NamePatterns) == 0 {
		inc.NamePatterns = def.NamePatterns
	}
	if inc.DailyThreshold == nil {
		inc.DailyThreshold = def.DailyThreshold
	}
	if inc.StreakBonusPerDay == nil {
		inc.StreakBonusPerDay = def.StreakBonusPerDay
	}
	if len(inc.RankBonuses) == 0 {
		inc.RankBonuses = def.RankBonuses
	}
	if inc.NoReworkBonusPerTask == nil {
		inc.NoReworkBonusPerTask = def.NoReworkBonusPerTask
	}
	if len(inc.AdjustmentStatuses) == 0 {
		inc.AdjustmentStatuses = def.AdjustmentStatuses
	}
	if len(inc.WeekendTags) == 0 {
		inc.WeekendTags = def.WeekendTags
	}
	if len(inc.WeekendBonuses) == 0 {
		inc.WeekendBonuses = def.WeekendBonuses
	}
	if len(inc.FreelancePayouts) == 0 {
		inc.FreelancePayouts = def.FreelancePayouts
	}
	if inc.StatusLookupBatchSize == 0 {
		inc.StatusLookupBatchSize = def.StatusLookupBatchSize
	}
	if inc.StatusLookupCap == 0 {
		inc.StatusLookupCap = def.StatusLookupCap
	}
}

// ValidateIncentives checks table contents that struct tags cannot express:
// regex syntax, rrule syntax and references to unknown project types
func ValidateIncentives(inc *Incentives) error {
	if err := validate.Struct(inc); err != nil {
		return fmt.Errorf("incentives validation failed: %w", err)
	}

	for projectType, weight := range inc.ProjectTypes {
		if weight <= 0 {
			return fmt.Errorf("project type %q must have a positive weight, got %d", projectType, weight)
		}
	}

	for i, entry := range inc.ProductVocabulary {
		if _, ok := inc.ProjectTypes[entry.Type]; !ok {
			return fmt.Errorf("productVocabulary[%d] references unknown project type %q", i, entry.Type)
		}
	}

	for code, projectType := range inc.ClientCodes {
		if _, ok := inc.ProjectTypes[projectType]; !ok {
			return fmt.Errorf("client code %q references unknown project type %q", code, projectType)
		}
	}

	if err := validatePatterns("productPatterns", inc.ProductPatterns, inc.ProjectTypes); err != nil {
		return err
	}
	if err := validatePatterns("namePatterns", inc.NamePatterns, inc.ProjectTypes); err != nil {
		return err
	}

	for i, rule := range inc.HolidayRules {
		if _, err := rrule.StrToROptionInLocation(rule, time.UTC); err != nil {
			return fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

func validatePatterns(section string, patterns []PatternEntry, projectTypes map[string]int) error {
	for i, entry := range patterns {
		if _, err := regexp.Compile(entry.Pattern); err != nil {
			return fmt.Errorf("invalid regex in %s[%d]: %w", section, i, err)
		}
		if _, ok := projectTypes[entry.Type]; !ok {
			return fmt.Errorf("%s[%d] references unknown project type %q", section, i, entry.Type)
		}
	}
	return nil
}
