package catalog

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

// labeledText is one sentiment example; the label is hidden from the
// model and the prompter.
type labeledText struct {
	ID    string
	Text  string
	Label string
}

var sentimentTemplates = map[string][]string{
	"positive": {
		"I absolutely loved this product, it exceeded all my expectations!",
		"What a wonderful experience, I would highly recommend it.",
		"The service was outstanding and the staff were incredibly helpful.",
		"This is the best purchase I've made this year, truly amazing quality.",
		"I'm so happy with the results, everything worked perfectly.",
		"Fantastic quality and great value for money.",
		"This made my day so much better, truly a delight.",
		"Exceeded my expectations in every way possible.",
		"The team did an incredible job, very professional.",
		"I can't say enough good things about this product.",
	},
	"negative": {
		"Terrible experience, I would never recommend this to anyone.",
		"The quality was extremely poor and not worth the money.",
		"I'm very disappointed with the service, it was awful.",
		"This product broke after just one day of use, completely useless.",
		"Worst purchase I've ever made, total waste of money.",
		"The customer support was unhelpful and rude.",
		"Nothing worked as advertised, very frustrating.",
		"I regret buying this, it's a complete disaster.",
		"The food was cold and tasteless, terrible restaurant.",
		"Absolutely horrible quality, do not buy this.",
	},
	"neutral": {
		"The product arrived on time and was as described.",
		"It's an average product, nothing special but it works.",
		"The service was okay, neither great nor terrible.",
		"I received my order today, it matches the description.",
		"It's a standard item that does what it's supposed to do.",
		"The experience was unremarkable, just average overall.",
		"Nothing noteworthy to report, everything was normal.",
		"The product is functional but has no standout features.",
		"A typical purchase, no complaints but no praise either.",
		"It meets basic requirements but doesn't exceed them.",
	},
}

const sentimentDatasetSize = 200

// sentimentDataset generates the synthetic dataset by expanding each
// template with suffix variations, padded to a fixed size.
func sentimentDataset() []labeledText {
	var dataset []labeledText
	idx := 0
	for _, label := range []string{"positive", "negative", "neutral"} {
		for _, text := range sentimentTemplates[label] {
			dataset = append(dataset, labeledText{ID: fmt.Sprintf("%d", idx), Text: text, Label: label})
			idx++
			for _, suffix := range []string{
				" Overall, my feelings are clear.",
				" This is my honest review.",
			} {
				if idx < sentimentDatasetSize {
					dataset = append(dataset, labeledText{
						ID:    fmt.Sprintf("%d", idx),
						Text:  strings.TrimRight(text, ".!") + suffix,
						Label: label,
					})
					idx++
				}
			}
		}
	}

	positives := sentimentTemplates["positive"]
	for len(dataset) < sentimentDatasetSize {
		src := dataset[len(dataset)%len(positives)]
		dataset = append(dataset, labeledText{
			ID:    fmt.Sprintf("%d", len(dataset)),
			Text:  src.Text + " (repeated)",
			Label: src.Label,
		})
	}
	return dataset[:sentimentDatasetSize]
}

// classificationPolicy sends the task instruction, then batches of test
// texts to label.
type classificationPolicy struct {
	examples  []labeledText
	index     int
	batchSize int
}

func (p *classificationPolicy) NextMessage(_ []models.Message, turn int, _ scenario.Scenario) (string, bool) {
	if turn == 0 {
		return "I need you to classify text snippets by sentiment. " +
			"For each text I give you, respond with exactly one word: " +
			"'positive', 'negative', or 'neutral'. " +
			"Do not include any other text in your response.", true
	}

	if p.index >= len(p.examples) {
		return "", false
	}
	end := p.index + p.batchSize
	if end > len(p.examples) {
		end = len(p.examples)
	}
	batch := p.examples[p.index:end]
	p.index = end

	var b strings.Builder
	b.WriteString("Classify these texts:\n")
	for i, ex := range batch {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, ex.Text)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

// Classification is the prompting-in-the-dark labeling scenario: the
// prompter never sees ground truth and is scored by accuracy on a hidden
// held-out set.
type Classification struct {
	train []labeledText
	test  []labeledText
}

func NewClassification() *Classification { return &Classification{} }

func (s *Classification) Config() models.ScenarioConfig {
	return models.ScenarioConfig{
		ID:          "classification/sentiment",
		Family:      models.FamilyClassification,
		Name:        "Sentiment Classification",
		Description: "Classify text snippets by sentiment (positive/negative/neutral) without seeing ground truth labels. Measured by accuracy on held-out set.",
		BudgetTokens: 10000,
		BudgetTurns:  20,
	}
}

func (s *Classification) Setup(seed int) []models.Message {
	dataset := sentimentDataset()
	rng := rand.New(rand.NewSource(int64(seed)))
	rng.Shuffle(len(dataset), func(i, j int) {
		dataset[i], dataset[j] = dataset[j], dataset[i]
	})
	split := len(dataset) * 8 / 10
	s.train = dataset[:split]
	s.test = dataset[split:]

	return []models.Message{{
		Role: models.RoleSystem,
		Content: "You are a classification assistant. You will be given text " +
			"snippets and must classify each by sentiment. Respond with " +
			"exactly one label per text: 'positive', 'negative', or 'neutral'.",
	}}
}

func (s *Classification) Tools() []models.ToolSchema { return nil }

func (s *Classification) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	return models.ToolCallResult{
		CallID:  call.ID,
		Name:    call.Name,
		Result:  "Error: No tools available in this scenario.",
		IsError: true,
	}
}

func (s *Classification) CheckTermination(messages []models.Message, _ int, _ int) bool {
	userMsgs := 0
	for _, m := range messages {
		if m.Role == models.RoleUser {
			userMsgs++
		}
	}
	return userMsgs > len(s.test)/5+2
}

func (s *Classification) Grade(result *models.ScenarioResult) map[string]float64 {
	var predictions []string
	for _, msg := range result.Messages {
		if msg.Role != models.RoleAssistant {
			continue
		}
		for _, line := range strings.Split(strings.ToLower(msg.Content), "\n") {
			line = strings.TrimSpace(line)
			for _, label := range []string{"positive", "negative", "neutral"} {
				if strings.Contains(line, label) {
					predictions = append(predictions, label)
					break
				}
			}
		}
	}

	total := len(predictions)
	if len(s.test) < total {
		total = len(s.test)
	}
	if total == 0 {
		return map[string]float64{
			"task_success":     0.0,
			"accuracy":         0.0,
			"consistency":      0.0,
			"efficiency":       0.0,
			"predictions_made": 0.0,
		}
	}

	correct := 0
	for i := 0; i < total; i++ {
		if predictions[i] == s.test[i].Label {
			correct++
		}
	}
	accuracy := float64(correct) / float64(total)

	// Consistency penalizes label sets narrower than the full label space.
	labelCounts := map[string]int{}
	for _, p := range predictions {
		labelCounts[p]++
	}
	consistency := 1.0 - float64(len(labelCounts))/3.0
	if consistency < 0 {
		consistency = 0
	}

	tokensPerPred := float64(result.TotalTokens) / float64(len(predictions))
	efficiency := 1.0 - tokensPerPred/500.0
	if efficiency < 0 {
		efficiency = 0
	}

	taskSuccess := 0.0
	if accuracy > 0.5 {
		taskSuccess = 1.0
	}

	return map[string]float64{
		"task_success":     taskSuccess,
		"accuracy":         accuracy,
		"consistency":      consistency,
		"efficiency":       efficiency,
		"predictions_made": float64(len(predictions)),
	}
}

func (s *Classification) ScriptedPolicy() scenario.ScriptedPolicy {
	return &classificationPolicy{examples: s.test, batchSize: 5}
}

func (s *Classification) HumanBrief() string {
	return "OBJECTIVE: Get the model to classify text snippets by sentiment.\n\n" +
		"LABELS: The model must respond with exactly one of: positive, negative, neutral.\n\n" +
		"HOW: You don't see ground-truth labels. First establish the task (e.g. ask the model " +
		"to classify text by sentiment; you can give a few example texts and ask for labels). " +
		"Then send more texts and the model must reply with only the label. Success is measured " +
		"by accuracy on a hidden test set; the more correct labels within your turn budget, " +
		"the better."
}
