package tasks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
)

// Classification rule names, in evaluation order
const (
	RuleExplicitWeight    = "explicit_weight"
	RuleProductVocabulary = "product_vocabulary"
	RuleProductPattern    = "product_pattern"
	RuleClientCode        = "client_code"
	RuleNamePattern       = "name_pattern"
)

// ProjectTypeUnknown is reported when no rule resolves a task
const ProjectTypeUnknown = "unknown"

// clientCodePattern matches "[x] [y] [NN] [CODE]": two bracketed tokens, a
// bracketed two-digit date, then the bracketed client code
var clientCodePattern = regexp.MustCompile(`\[[^\]]*\]\s*\[[^\]]*\]\s*\[\d{2}\]\s*\[([^\]]+)\]`)

// Classification is the resolved weight of a task and the rule that produced it
type Classification struct {
	Weight      int
	ProjectType string
	Rule        string
}

type classifierRule struct {
	name    string
	resolve func(task *model.Task) (Classification, bool)
}

type compiledPattern struct {
	re          *regexp.Regexp
	projectType string
}

type vocabularyEntry struct {
	match       string
	projectType string
}

// Classifier resolves a task's point weight through an ordered rule table.
// The first rule that produces a positive weight wins.
type Classifier struct {
	resolver        *Resolver
	projectTypes    map[string]int
	vocabulary      []vocabularyEntry
	productPatterns []compiledPattern
	clientCodes     map[string]string
	namePatterns    []compiledPattern
	rules           []classifierRule
}

// NewClassifier compiles the incentive vocabularies into a rule table
func NewClassifier(resolver *Resolver, inc *config.Incentives) (*Classifier, error) {
	c := &Classifier{
		resolver:     resolver,
		projectTypes: inc.ProjectTypes,
		clientCodes:  make(map[string]string, len(inc.ClientCodes)),
	}

	for _, entry := range inc.ProductVocabulary {
		match := Normalize(entry.Match)
		if match == "" {
			continue
		}
		c.vocabulary = append(c.vocabulary, vocabularyEntry{match: match, projectType: entry.Type})
	}

	var err error
	if c.productPatterns, err = compilePatterns(inc.ProductPatterns); err != nil {
		return nil, fmt.Errorf("failed to compile product patterns: %w", err)
	}
	if c.namePatterns, err = compilePatterns(inc.NamePatterns); err != nil {
		return nil, fmt.Errorf("failed to compile name patterns: %w", err)
	}

	for code, projectType := range inc.ClientCodes {
		c.clientCodes[strings.ToUpper(strings.TrimSpace(code))] = projectType
	}

	c.rules = []classifierRule{
		{name: RuleExplicitWeight, resolve: c.explicitWeight},
		{name: RuleProductVocabulary, resolve: c.productVocabulary},
		{name: RuleProductPattern, resolve: c.productPattern},
		{name: RuleClientCode, resolve: c.clientCode},
		{name: RuleNamePattern, resolve: c.namePattern},
	}

	return c, nil
}

// Classify returns the task's weight classification. The boolean is false
// when every rule failed and the task's project type is unknown.
func (c *Classifier) Classify(task *model.Task) (Classification, bool) {
	for _, rule := range c.rules {
		if result, ok := rule.resolve(task); ok && result.Weight > 0 {
			result.Rule = rule.name
			return result, true
		}
	}
	return Classification{ProjectType: ProjectTypeUnknown}, false
}

// RuleNames lists the rules in evaluation order
func (c *Classifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, rule := range c.rules {
		names[i] = rule.name
	}
	return names
}

func (c *Classifier) explicitWeight(task *model.Task) (Classification, bool) {
	text, ok := c.resolver.WeightText(task)
	if !ok {
		return Classification{}, false
	}
	weight, ok := ParseLeadingInt(text)
	if !ok || weight <= 0 {
		return Classification{}, false
	}
	return Classification{Weight: weight}, true
}

func (c *Classifier) productVocabulary(task *model.Task) (Classification, bool) {
	product, ok := c.resolver.Product(task)
	if !ok {
		return Classification{}, false
	}
	normalized := Normalize(product)
	for _, entry := range c.vocabulary {
		if strings.Contains(normalized, entry.match) {
			return c.byType(entry.projectType)
		}
	}
	return Classification{}, false
}

func (c *Classifier) productPattern(task *model.Task) (Classification, bool) {
	product, ok := c.resolver.Product(task)
	if !ok {
		return Classification{}, false
	}
	return c.firstPattern(c.productPatterns, product)
}

func (c *Classifier) clientCode(task *model.Task) (Classification, bool) {
	m := clientCodePattern.FindStringSubmatch(task.Name)
	if m == nil {
		return Classification{}, false
	}
	projectType, ok := c.clientCodes[strings.ToUpper(strings.TrimSpace(m[1]))]
	if !ok {
		return Classification{}, false
	}
	return c.byType(projectType)
}

func (c *Classifier) namePattern(task *model.Task) (Classification, bool) {
	return c.firstPattern(c.namePatterns, task.Name)
}

func (c *Classifier) firstPattern(patterns []compiledPattern, text string) (Classification, bool) {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return c.byType(p.projectType)
		}
	}
	return Classification{}, false
}

func (c *Classifier) byType(projectType string) (Classification, bool) {
	weight, ok := c.projectTypes[projectType]
	if !ok || weight <= 0 {
		return Classification{}, false
	}
	return Classification{Weight: weight, ProjectType: projectType}, true
}

// ParseLeadingInt parses the digits at the start of s ("3 - Medium" -> 3)
func ParseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func compilePatterns(entries []config.PatternEntry) ([]compiledPattern, error) {
	patterns := make([]compiledPattern, 0, len(entries))
	for _, entry := range entries {
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", entry.Pattern, err)
		}
		patterns = append(patterns, compiledPattern{re: re, projectType: entry.Type})
	}
	return patterns, nil
}
