package judges

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/metrics"
	"github.com/promptgauntlet/gauntlet/internal/models"
)

// Completer is the minimal model surface the rubric judge needs. The
// adapters package satisfies it.
type Completer interface {
	Name() string
	Complete(ctx context.Context, messages []models.Message, tools []models.ToolSchema, seed int, temperature float64) (*models.Response, error)
}

const defaultRubricTemplate = "You are an expert evaluator. Score the following output against the rubric.\n\n" +
	"## Rubric\n%s\n\n" +
	"## Output to Evaluate\n%s\n\n" +
	"Respond with a JSON object containing:\n" +
	"- \"score\": a float from 0.0 (worst) to 1.0 (best)\n" +
	"- \"rationale\": a brief explanation of the score\n\n" +
	"JSON response:"

// rubric output longer than this is truncated before prompting.
const maxJudgedOutputLen = 3000

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	numberRe      = regexp.MustCompile(`0?\.\d+|\d+\.?\d*`)
)

// RubricJudge scores output against a rubric using a model adapter,
// falling back to deterministic criteria matching when no adapter is
// configured.
type RubricJudge struct {
	client   Completer
	template string
}

type RubricOption func(*RubricJudge)

// WithPromptTemplate overrides the judging prompt. The template must
// contain two %s verbs: rubric text, then the output under evaluation.
func WithPromptTemplate(tmpl string) RubricOption {
	return func(j *RubricJudge) { j.template = tmpl }
}

// NewRubricJudge creates a rubric judge. A nil client selects the
// deterministic fallback.
func NewRubricJudge(client Completer, opts ...RubricOption) *RubricJudge {
	j := &RubricJudge{client: client, template: defaultRubricTemplate}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *RubricJudge) Name() string { return "rubric" }

// CalibrationExample pairs a known text with its expected score.
type CalibrationExample struct {
	Text     string
	Expected float64
}

// CalibrationResult records how the judge scored a known example.
type CalibrationResult struct {
	Expected float64
	Actual   float64
}

// Calibrate scores known examples against the rubric so drift between the
// judge and expected scores can be inspected before a run.
func (j *RubricJudge) Calibrate(ctx context.Context, examples []CalibrationExample, rubric Rubric) ([]CalibrationResult, error) {
	results := make([]CalibrationResult, 0, len(examples))
	for _, ex := range examples {
		score, err := j.Score(ctx, ex.Text, rubric)
		if err != nil {
			return nil, fmt.Errorf("calibrating example: %w", err)
		}
		results = append(results, CalibrationResult{Expected: ex.Expected, Actual: score.Score})
	}
	return results, nil
}

func (j *RubricJudge) Score(ctx context.Context, output string, rubric Rubric) (Score, error) {
	if j.client == nil {
		return j.deterministicScore(output, rubric), nil
	}

	rubricText, _ := rubric["rubric_text"].(string)
	if rubricText == "" {
		desc, _ := rubric["description"].(string)
		if desc == "" {
			desc = "Evaluate quality"
		}
		var lines []string
		for _, c := range rubricCriteria(rubric) {
			lines = append(lines, "- "+c)
		}
		rubricText = desc + "\n\nCriteria:\n" + strings.Join(lines, "\n")
	}

	truncated := output
	if len(truncated) > maxJudgedOutputLen {
		truncated = truncated[:maxJudgedOutputLen]
	}
	prompt := fmt.Sprintf(j.template, rubricText, truncated)

	resp, err := j.client.Complete(ctx, []models.Message{
		{Role: models.RoleUser, Content: prompt},
	}, nil, 0, 0.0)
	if err != nil {
		return Score{}, fmt.Errorf("rubric judge completion: %w", err)
	}

	rawScore, rationale := parseJudgeResponse(resp.Content)
	return Score{
		JudgeName: j.Name(),
		Score:     metrics.Clamp01(rawScore),
		Rationale: rationale,
		Metadata:  map[string]any{"raw_score": rawScore, "model": j.client.Name()},
	}, nil
}

// parseJudgeResponse extracts (score, rationale) from a judge reply,
// tolerating fenced code blocks and falling back to the first number in
// the text.
func parseJudgeResponse(content string) (float64, string) {
	trimmed := strings.TrimSpace(content)
	if strings.Contains(trimmed, "```") {
		if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
			trimmed = strings.TrimSpace(m[1])
		}
	}

	var parsed struct {
		Score     *float64 `json:"score"`
		Rationale string   `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		score := 0.5
		if parsed.Score != nil {
			score = *parsed.Score
		}
		return score, parsed.Rationale
	}

	rationale := content
	if len(rationale) > 200 {
		rationale = rationale[:200]
	}
	if m := numberRe.FindString(content); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return metrics.Clamp01(v), rationale
		}
	}
	return 0.5, rationale
}

func (j *RubricJudge) deterministicScore(output string, rubric Rubric) Score {
	criteria := rubricCriteria(rubric)
	if len(criteria) == 0 {
		return Score{
			JudgeName: j.Name(),
			Score:     0.5,
			Rationale: "No criteria in rubric; default score.",
			Metadata:  map[string]any{"deterministic": true},
		}
	}

	textLower := strings.ToLower(output)
	matched := 0
	for _, criterion := range criteria {
		if invariantPresent(textLower, criterion) {
			matched++
		}
	}

	return Score{
		JudgeName: j.Name(),
		Score:     float64(matched) / float64(len(criteria)),
		Rationale: fmt.Sprintf("Deterministic: %d/%d criteria matched", matched, len(criteria)),
		Metadata:  map[string]any{"deterministic": true, "matched": matched, "total": len(criteria)},
	}
}

// rubricCriteria returns the criteria list, accepting required_invariants
// as an alias.
func rubricCriteria(rubric Rubric) []string {
	for _, key := range []string{"criteria", "required_invariants"} {
		raw, ok := rubric[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			return v
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}
