// Package adapters defines the model adapter contract and its backends:
// a deterministic mock, an OpenAI-compatible HTTP client, and a local echo
// stub for wiring tests.
package adapters

import (
	"context"
	"fmt"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// Client is the capability any model backend must satisfy. Transient
// failures are the implementation's responsibility to handle or surface;
// the runner does not retry.
type Client interface {
	// Name returns the adapter/model name.
	Name() string

	// Complete sends the conversation to the model and returns one
	// response. tools may be nil; temperature is pinned to zero for
	// scripted runs.
	Complete(ctx context.Context, messages []models.Message, tools []models.ToolSchema, seed int, temperature float64) (*models.Response, error)
}

// Options configures adapter construction.
type Options struct {
	// BaseURL overrides the API endpoint for OpenAI-compatible backends.
	BaseURL string
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
	// MaxTokens caps completion length for hosted backends.
	MaxTokens int
}

// New builds an adapter by name: "mock", "local", or any other name, which
// is treated as an OpenAI-compatible model identifier.
func New(name string, opts Options) (Client, error) {
	switch name {
	case "":
		return nil, fmt.Errorf("adapter name is empty")
	case "mock":
		return NewMock(), nil
	case "local":
		return NewLocal(), nil
	default:
		return NewOpenAI(name, opts)
	}
}
