package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
	"github.com/promptgauntlet/gauntlet/internal/tools"
)

const (
	expectedPopulation = 116250
	expectedGDP        = 7.6e9
)

var numberPattern = regexp.MustCompile(`[\d,]+\.?\d*`)

// toolUsePolicy sends the research task once, then lets the model keep
// working until it produces a final text answer.
type toolUsePolicy struct{}

func (p *toolUsePolicy) NextMessage(messages []models.Message, turn int, _ scenario.Scenario) (string, bool) {
	if turn == 0 {
		return "Find the population of Springfield, IL using the search tool. " +
			"Then calculate the GDP per capita given that the GDP is 7.6 billion dollars. " +
			"Finally, store the result using the file_store tool with key 'gdp_per_capita'. " +
			"Show your work step by step.", true
	}

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != models.RoleAssistant || len(msg.ToolCalls) > 0 {
			continue
		}
		lower := strings.ToLower(msg.Content)
		for _, kw := range []string{"per capita", "result", "approximately", "answer"} {
			if strings.Contains(lower, kw) {
				return "", false
			}
		}
	}
	// No final answer yet; an empty user turn lets the model continue its
	// tool-calling sequence.
	return "", true
}

// ToolUse is the multi-turn research scenario: search a corpus, compute a
// derived value, and store the result, graded against ground truth.
type ToolUse struct {
	registry  *tools.Registry
	search    *tools.Search
	filestore *tools.FileStore
	callsMade []models.ToolCallRequest
}

func NewToolUse() *ToolUse {
	search := tools.NewSearch("")
	filestore := tools.NewFileStore()
	return &ToolUse{
		registry:  tools.NewRegistry(search, tools.NewCalculator(), filestore),
		search:    search,
		filestore: filestore,
	}
}

func (s *ToolUse) Config() models.ScenarioConfig {
	return models.ScenarioConfig{
		ID:           "tool_use/research_calculate",
		Family:       models.FamilyToolUse,
		Name:         "Research and Calculate",
		Description:  "Use search, calculator, and file store tools to research a topic, compute derived values, and store results. Validates final answer against ground truth.",
		BudgetTokens: 8000,
		BudgetTurns:  15,
	}
}

func (s *ToolUse) Setup(_ int) []models.Message {
	s.callsMade = nil
	s.filestore.Reset()
	// Corpus load failures surface later as empty search results.
	_ = s.search.LoadCorpus()

	return []models.Message{{
		Role: models.RoleSystem,
		Content: "You are a research assistant with access to tools. " +
			"Use the search tool to find information, the calculator " +
			"for computations, and file_store to save results. " +
			"Always show your reasoning.",
	}}
}

func (s *ToolUse) Tools() []models.ToolSchema {
	return s.registry.Schemas()
}

func (s *ToolUse) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	s.callsMade = append(s.callsMade, call)
	return s.registry.HandleCall(call)
}

func (s *ToolUse) CheckTermination(messages []models.Message, _ int, _ int) bool {
	if len(s.callsMade) < 2 {
		return false
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleAssistant {
			return len(messages[i].ToolCalls) == 0
		}
	}
	return false
}

func (s *ToolUse) Grade(result *models.ScenarioResult) map[string]float64 {
	used := map[string]bool{}
	for _, call := range s.callsMade {
		used[call.Name] = true
	}
	toolCorrect := 0.0
	for _, name := range []string{"search", "calculator", "file_store"} {
		if used[name] {
			toolCorrect += 1.0 / 3.0
		}
	}

	expectedPerCapita := expectedGDP / expectedPopulation
	answerCorrect := 0.0
	finalAnswer := result.FinalAssistantText()
	for _, numStr := range numberPattern.FindAllString(strings.ReplaceAll(finalAnswer, ",", ""), -1) {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			continue
		}
		if math.Abs(num-expectedPerCapita)/expectedPerCapita < 0.1 {
			answerCorrect = 1.0
			break
		}
	}

	errorCount := 0
	for _, msg := range result.Messages {
		if msg.Role == models.RoleTool && strings.Contains(msg.Content, "Error") {
			errorCount++
		}
	}
	recovery := 0.0
	if errorCount > 0 && answerCorrect > 0 {
		recovery = 1.0
	}

	efficiency := 1.0 - float64(result.TotalTokens)/3000.0
	if efficiency < 0 {
		efficiency = 0
	}

	taskSuccess := 0.0
	if answerCorrect > 0 && toolCorrect >= 0.66 {
		taskSuccess = 1.0
	}

	return map[string]float64{
		"task_success":          taskSuccess,
		"answer_accuracy":       answerCorrect,
		"tool_call_correctness": toolCorrect,
		"tools_used":            float64(len(used)),
		"recovery_rate":         recovery,
		"efficiency":            efficiency,
		"total_tool_calls":      float64(len(s.callsMade)),
	}
}

func (s *ToolUse) ScriptedPolicy() scenario.ScriptedPolicy {
	return &toolUsePolicy{}
}

func (s *ToolUse) HumanBrief() string {
	return "OBJECTIVE: Get the model to (1) search for Springfield IL population, " +
		"(2) calculate GDP per capita (Springfield GDP is 7.6 billion dollars), " +
		"(3) store the result in the file_store with key 'gdp_per_capita'.\n\n" +
		"TOOLS: The model has access to: search (query a knowledge corpus), " +
		"calculator (evaluate math expressions), file_store (read/write/list). " +
		"You instruct the model; it will call tools and reply with results.\n\n" +
		"SUCCESS: The run succeeds when the model gives a final answer with the " +
		"per-capita value (approximately 65376) and has used the tools correctly. " +
		"Guide it step by step if needed (e.g. 'Search for Springfield IL population', " +
		"then 'Calculate GDP per capita using 7.6 billion and that population')."
}
