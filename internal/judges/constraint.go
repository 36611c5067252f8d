package judges

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// constraintRubric holds the rubric fields the constraint judge understands.
type constraintRubric struct {
	RequiredInvariants []string `mapstructure:"required_invariants"`
	TargetKeywords     []string `mapstructure:"target_keywords"`
	RegexPatterns      []string `mapstructure:"regex_patterns"`
	MinLength          int      `mapstructure:"min_length"`
}

// ConstraintJudge runs deterministic pass/fail checks: invariant concept
// presence, keyword presence, regex matches, and minimum length. The score
// is the fraction of checks passed. It never fails and never blocks.
type ConstraintJudge struct{}

// NewConstraintJudge creates a ConstraintJudge.
func NewConstraintJudge() *ConstraintJudge { return &ConstraintJudge{} }

func (j *ConstraintJudge) Name() string { return "constraint" }

func (j *ConstraintJudge) Score(_ context.Context, output string, rubric Rubric) (Score, error) {
	var r constraintRubric
	if err := mapstructure.Decode(map[string]any(rubric), &r); err != nil {
		return Score{}, fmt.Errorf("decoding constraint rubric: %w", err)
	}

	textLower := strings.ToLower(output)
	passed, total := 0, 0
	var details []string

	for _, inv := range r.RequiredInvariants {
		total++
		if invariantPresent(textLower, inv) {
			passed++
			details = append(details, fmt.Sprintf("PASS: invariant %q", inv))
		} else {
			details = append(details, fmt.Sprintf("FAIL: invariant %q", inv))
		}
	}

	for _, kw := range r.TargetKeywords {
		total++
		if strings.Contains(textLower, strings.ToLower(kw)) {
			passed++
			details = append(details, fmt.Sprintf("PASS: keyword %q", kw))
		} else {
			details = append(details, fmt.Sprintf("FAIL: keyword %q", kw))
		}
	}

	for _, pattern := range r.RegexPatterns {
		total++
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			details = append(details, fmt.Sprintf("FAIL: bad regex %q", pattern))
			continue
		}
		if re.MatchString(output) {
			passed++
			details = append(details, fmt.Sprintf("PASS: regex %q", pattern))
		} else {
			details = append(details, fmt.Sprintf("FAIL: regex %q", pattern))
		}
	}

	if r.MinLength > 0 {
		total++
		if len(output) >= r.MinLength {
			passed++
			details = append(details, fmt.Sprintf("PASS: length >= %d", r.MinLength))
		} else {
			details = append(details, fmt.Sprintf("FAIL: length %d < %d", len(output), r.MinLength))
		}
	}

	score := 0.0
	if total > 0 {
		score = float64(passed) / float64(total)
	}
	if len(details) > 10 {
		details = details[:10]
	}

	return Score{
		JudgeName: j.Name(),
		Score:     score,
		Rationale: strings.Join(details, "; "),
		Metadata: map[string]any{
			"checks_passed": passed,
			"checks_total":  total,
		},
	}, nil
}

// invariantPresent uses loose word-overlap matching: the invariant concept
// counts as present when any of its words longer than 3 characters appears
// in the text.
func invariantPresent(textLower, invariant string) bool {
	for _, w := range strings.Fields(strings.ToLower(invariant)) {
		if len(w) > 3 && strings.Contains(textLower, w) {
			return true
		}
	}
	return false
}
