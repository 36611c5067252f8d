package adapters

import (
	"context"
	"fmt"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/tokens"
)

// Local is a stub adapter for wiring tests against a future local
// inference backend. It echoes the last user message deterministically.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (c *Local) Name() string { return "local" }

func (c *Local) Complete(_ context.Context, messages []models.Message, _ []models.ToolSchema, _ int, _ float64) (*models.Response, error) {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			lastUser = messages[i].Content
			break
		}
	}
	if lastUser == "" {
		return nil, fmt.Errorf("local adapter requires at least one user message")
	}

	content := fmt.Sprintf("Echo: %s", lastUser)
	prompt := 0
	for _, msg := range messages {
		prompt += tokens.Estimate(msg.Content)
	}
	return &models.Response{
		Content: content,
		Usage:   models.Usage{PromptTokens: prompt, CompletionTokens: tokens.Estimate(content)},
		Model:   "local",
	}, nil
}
