// Package config loads harness configuration from YAML with defaults and
// CLI flag overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel        = "mock"
	DefaultAPIKeyEnv    = "OPENAI_API_KEY"
	DefaultMaxTokens    = 4096
	DefaultBudgetTokens = 10000
	DefaultBudgetTurns  = 20
	DefaultSeeds        = 3
)

// Model configures the adapter.
type Model struct {
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Budget caps per-run token and turn spend. Budgets are enforced between
// turns; an in-flight turn always completes.
type Budget struct {
	Tokens int `yaml:"tokens"`
	Turns  int `yaml:"turns"`
}

// Judges configures the LLM-judge stack.
type Judges struct {
	RubricModel         string             `yaml:"rubric_model"`
	EmbeddingModel      string             `yaml:"embedding_model"`
	EnsembleWeights     map[string]float64 `yaml:"ensemble_weights"`
	DisagreementPenalty float64            `yaml:"disagreement_penalty"`
}

// Scoring configures aggregate score weights.
type Scoring struct {
	FamilyWeights map[string]float64 `yaml:"family_weights"`
	MetricWeights map[string]float64 `yaml:"metric_weights"`
}

// Config is the top-level harness configuration.
type Config struct {
	Model     Model    `yaml:"model"`
	Budget    Budget   `yaml:"budget"`
	Judges    Judges   `yaml:"judges"`
	Scoring   Scoring  `yaml:"scoring"`
	Scenarios []string `yaml:"scenarios"`
	Seeds     int      `yaml:"seeds"`
	Parallel  int      `yaml:"parallel"`
	RunsDir   string   `yaml:"runs_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: Model{
			Name:        DefaultModel,
			APIKeyEnv:   DefaultAPIKeyEnv,
			Temperature: 0.0,
			MaxTokens:   DefaultMaxTokens,
		},
		Budget: Budget{
			Tokens: DefaultBudgetTokens,
			Turns:  DefaultBudgetTurns,
		},
		Judges: Judges{
			RubricModel:    DefaultModel,
			EmbeddingModel: "text-embedding-3-small",
			EnsembleWeights: map[string]float64{
				"embedding":  0.3,
				"rubric":     0.4,
				"constraint": 0.3,
			},
			DisagreementPenalty: 0.1,
		},
		Scoring: Scoring{
			FamilyWeights: map[string]float64{
				"classification": 0.25,
				"constraint":     0.25,
				"tool_use":       0.25,
				"convergence":    0.25,
			},
			MetricWeights: map[string]float64{
				"task_success": 0.5,
				"efficiency":   0.2,
				"robustness":   0.15,
				"recovery":     0.15,
			},
		},
		Scenarios: []string{"all"},
		Seeds:     DefaultSeeds,
		Parallel:  1,
		RunsDir:   "runs",
	}
}

// Load reads YAML from path layered over the defaults. An empty path
// returns the defaults unchanged; a missing file is an error since the
// user asked for it explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Budget.Tokens <= 0 {
		return fmt.Errorf("budget.tokens must be positive, got %d", c.Budget.Tokens)
	}
	if c.Budget.Turns <= 0 {
		return fmt.Errorf("budget.turns must be positive, got %d", c.Budget.Turns)
	}
	if c.Seeds <= 0 {
		return fmt.Errorf("seeds must be positive, got %d", c.Seeds)
	}
	return nil
}

// Overrides carries CLI flag values; zero values mean "not set" except
// Temperature, which uses the pointer to distinguish 0.0 from unset.
type Overrides struct {
	Model        string
	Seeds        int
	BudgetTokens int
	BudgetTurns  int
	Scenarios    []string
	Temperature  *float64
	Parallel     int
}

// Apply merges CLI overrides into the config in place.
func (c *Config) Apply(o Overrides) {
	if o.Model != "" {
		c.Model.Name = o.Model
	}
	if o.Seeds > 0 {
		c.Seeds = o.Seeds
	}
	if o.BudgetTokens > 0 {
		c.Budget.Tokens = o.BudgetTokens
	}
	if o.BudgetTurns > 0 {
		c.Budget.Turns = o.BudgetTurns
	}
	if len(o.Scenarios) > 0 {
		c.Scenarios = o.Scenarios
	}
	if o.Temperature != nil {
		c.Model.Temperature = *o.Temperature
	}
	if o.Parallel > 0 {
		c.Parallel = o.Parallel
	}
}
