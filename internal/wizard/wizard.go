// Package wizard collects harness configuration interactively and renders
// a starter config file.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ConfigSpec holds the fields collected by the init wizard.
type ConfigSpec struct {
	Model     string
	Seeds     int
	Scenarios []string
	RunsDir   string
}

const configTemplate = `model:
  name: {{ .Model }}
budget:
  tokens: 10000
  turns: 20
seeds: {{ .Seeds }}
scenarios:
{{- range .Scenarios }}
  - {{ . }}
{{- end }}
runs_dir: {{ .RunsDir }}
`

// RunConfigWizard runs an interactive huh form collecting the starter
// configuration. If initialModel is non-empty it pre-populates the model
// field.
func RunConfigWizard(in io.Reader, out io.Writer, initialModel string) (*ConfigSpec, error) {
	var (
		model        = initialModel
		seedsRaw     = "3"
		scenariosRaw = "all"
		runsDir      = "runs"
	)
	if model == "" {
		model = "mock"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model adapter").
				Description("mock runs offline and deterministically").
				Options(
					huh.NewOption("mock", "mock"),
					huh.NewOption("local", "local"),
					huh.NewOption("openai", "openai"),
				).
				Value(&model),
			huh.NewInput().
				Title("Seeds").
				Description("Seeds run per scenario; more seeds give tighter statistics").
				Value(&seedsRaw).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("seeds must be a positive integer")
					}
					return nil
				}),
			huh.NewInput().
				Title("Scenarios").
				Description("Comma-separated IDs or glob patterns, or 'all'").
				Placeholder("all").
				Value(&scenariosRaw),
			huh.NewInput().
				Title("Runs directory").
				Description("Where traces and scorecards are written").
				Value(&runsDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("runs directory is required")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Accessible mode for non-TTY input (tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("config wizard: %w", err)
	}

	seeds, _ := strconv.Atoi(strings.TrimSpace(seedsRaw))
	scenarios := splitAndTrim(scenariosRaw)
	if len(scenarios) == 0 {
		scenarios = []string{"all"}
	}

	return &ConfigSpec{
		Model:     strings.TrimSpace(model),
		Seeds:     seeds,
		Scenarios: scenarios,
		RunsDir:   strings.TrimSpace(runsDir),
	}, nil
}

// GenerateConfigYAML renders the starter config file for a spec.
func GenerateConfigYAML(spec *ConfigSpec) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing config template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("rendering config template: %w", err)
	}
	return buf.String(), nil
}

func splitAndTrim(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
