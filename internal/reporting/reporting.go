// Package reporting renders run scorecards as JSON, CSV, and markdown
// artifacts inside a run directory.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scoring"
)

// Generate writes scorecard.json, scorecard.csv, and report.md into
// runDir.
func Generate(card *models.Scorecard, runDir string) error {
	if err := WriteJSON(card, filepath.Join(runDir, "scorecard.json")); err != nil {
		return err
	}
	if err := WriteCSV(card, filepath.Join(runDir, "scorecard.csv")); err != nil {
		return err
	}
	return WriteMarkdown(card, filepath.Join(runDir, "report.md"))
}

// LoadScorecard reads a previously written scorecard.json from a run
// directory.
func LoadScorecard(runDir string) (*models.Scorecard, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "scorecard.json"))
	if err != nil {
		return nil, fmt.Errorf("reading scorecard: %w", err)
	}
	var card models.Scorecard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("parsing scorecard: %w", err)
	}
	return &card, nil
}

// WriteJSON writes the scorecard as indented JSON.
func WriteJSON(card *models.Scorecard, path string) error {
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scorecard: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing scorecard: %w", err)
	}
	return nil
}

// WriteCSV writes a flat table: one row per scenario, four statistic
// columns per metric.
func WriteCSV(card *models.Scorecard, path string) error {
	if len(card.Entries) == 0 {
		return nil
	}

	metricNames := allMetricNames(card)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"scenario_id", "family", "seeds"}
	for _, mn := range metricNames {
		header = append(header, mn+"_median", mn+"_mean", mn+"_std", mn+"_p10")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, entry := range card.Entries {
		row := []string{entry.ScenarioID, string(entry.Family), fmt.Sprintf("%d", entry.SeedsRun)}
		for _, mn := range metricNames {
			if mv, ok := entry.Metrics[mn]; ok {
				row = append(row,
					fmt.Sprintf("%.4f", mv.Median),
					fmt.Sprintf("%.4f", mv.Mean),
					fmt.Sprintf("%.4f", mv.Std),
					fmt.Sprintf("%.4f", mv.P10))
			} else {
				row = append(row, "", "", "", "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteMarkdown writes the human-readable report: summary, per-family
// breakdown, Pareto ranking, and weighted scores.
func WriteMarkdown(card *models.Scorecard, path string) error {
	var b strings.Builder

	b.WriteString("# PromptGauntlet Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n", card.RunID)
	fmt.Fprintf(&b, "**Model:** %s\n", card.Model)
	fmt.Fprintf(&b, "**Schema Version:** %s\n\n", card.SchemaVersion)

	b.WriteString("## Summary\n\n")
	summary := [][]string{{"Scenario", "Family", "Seeds", "Task Success (median)", "Efficiency (median)"}}
	for _, entry := range card.Entries {
		summary = append(summary, []string{
			entry.ScenarioID,
			string(entry.Family),
			fmt.Sprintf("%d", entry.SeedsRun),
			metricMedian(entry, "task_success"),
			metricMedian(entry, "efficiency"),
		})
	}
	writeTable(&b, summary)

	families := map[string][]models.ScorecardEntry{}
	for _, entry := range card.Entries {
		families[string(entry.Family)] = append(families[string(entry.Family)], entry)
	}
	familyNames := make([]string, 0, len(families))
	for name := range families {
		familyNames = append(familyNames, name)
	}
	sort.Strings(familyNames)

	for _, family := range familyNames {
		fmt.Fprintf(&b, "## Family: %s\n\n", strings.ToUpper(family))
		for _, entry := range families[family] {
			fmt.Fprintf(&b, "### %s\n", entry.ScenarioName)
			fmt.Fprintf(&b, "*%s* | Seeds: %d\n\n", entry.ScenarioID, entry.SeedsRun)

			rows := [][]string{{"Metric", "Median", "Mean", "Std", "P10", "P90"}}
			metricNames := make([]string, 0, len(entry.Metrics))
			for mn := range entry.Metrics {
				metricNames = append(metricNames, mn)
			}
			sort.Strings(metricNames)
			for _, mn := range metricNames {
				mv := entry.Metrics[mn]
				rows = append(rows, []string{
					mn,
					fmt.Sprintf("%.4f", mv.Median),
					fmt.Sprintf("%.4f", mv.Mean),
					fmt.Sprintf("%.4f", mv.Std),
					fmt.Sprintf("%.4f", mv.P10),
					fmt.Sprintf("%.4f", mv.P90),
				})
			}
			writeTable(&b, rows)
		}
	}

	b.WriteString("## Pareto Ranking\n\n")
	ranking := scoring.ParetoRank(card, nil)
	rankRows := [][]string{{"Rank", "Scenario", "Pareto Optimal", "Objectives"}}
	for _, pe := range ranking {
		objNames := make([]string, 0, len(pe.Objectives))
		for name := range pe.Objectives {
			objNames = append(objNames, name)
		}
		sort.Strings(objNames)
		objParts := make([]string, 0, len(objNames))
		for _, name := range objNames {
			objParts = append(objParts, fmt.Sprintf("%s: %.3f", name, pe.Objectives[name]))
		}
		optimal := "No"
		if pe.IsParetoFront {
			optimal = "Yes"
		}
		rankRows = append(rankRows, []string{
			fmt.Sprintf("%d", pe.Rank), pe.ScenarioID, optimal, strings.Join(objParts, ", "),
		})
	}
	writeTable(&b, rankRows)

	b.WriteString("## Weighted Scores\n\n")
	weightRows := [][]string{{"Scenario", "Weighted Score"}}
	for _, entry := range card.Entries {
		weightRows = append(weightRows, []string{
			entry.ScenarioID,
			fmt.Sprintf("%.4f", scoring.WeightedScore(entry, nil)),
		})
	}
	writeTable(&b, weightRows)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func metricMedian(entry models.ScorecardEntry, name string) string {
	if mv, ok := entry.Metrics[name]; ok {
		return fmt.Sprintf("%.3f", mv.Median)
	}
	return "N/A"
}

func allMetricNames(card *models.Scorecard) []string {
	nameSet := map[string]struct{}{}
	for _, entry := range card.Entries {
		for mn := range entry.Metrics {
			nameSet[mn] = struct{}{}
		}
	}
	names := make([]string, 0, len(nameSet))
	for mn := range nameSet {
		names = append(names, mn)
	}
	sort.Strings(names)
	return names
}

// writeTable renders a markdown table with columns padded to equal
// display width, so the raw file reads as cleanly as the rendered one.
func writeTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	writeRow := func(row []string) {
		b.WriteString("|")
		for i, cell := range row {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	b.WriteString("\n")
}
