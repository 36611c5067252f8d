package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// JUnit XML schema types. CI systems ingest the scorecard through this
// view: one testsuite per task family, one testcase per scenario.

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one task family.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one scenario entry.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure records a scenario whose median task success is below the
// pass bar.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// junitPassBar is the median task_success above which a scenario counts
// as passed.
const junitPassBar = 0.5

// ConvertToJUnit renders a scorecard as JUnit suites grouped by family.
func ConvertToJUnit(card *models.Scorecard) *JUnitTestSuites {
	families := map[string][]models.ScorecardEntry{}
	for _, entry := range card.Entries {
		families[string(entry.Family)] = append(families[string(entry.Family)], entry)
	}
	familyNames := make([]string, 0, len(families))
	for name := range families {
		familyNames = append(familyNames, name)
	}
	sort.Strings(familyNames)

	out := &JUnitTestSuites{}
	timestamp := time.Now().UTC().Format(time.RFC3339)
	for _, family := range familyNames {
		suite := JUnitTestSuite{
			Name:      family,
			Timestamp: timestamp,
			Properties: []JUnitProperty{
				{Name: "run_id", Value: card.RunID},
				{Name: "model", Value: card.Model},
				{Name: "schema_version", Value: card.SchemaVersion},
			},
		}
		for _, entry := range families[family] {
			suite.Tests++
			tc := JUnitTestCase{
				Name:      entry.ScenarioName,
				Classname: entry.ScenarioID,
			}
			if success, ok := entry.Metrics["task_success"]; !ok || success.Median <= junitPassBar {
				suite.Failures++
				tc.Failure = buildFailure(entry)
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func buildFailure(entry models.ScorecardEntry) *JUnitFailure {
	success := 0.0
	if mv, ok := entry.Metrics["task_success"]; ok {
		success = mv.Median
	}

	names := make([]string, 0, len(entry.Metrics))
	for name := range entry.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var body string
	for _, name := range names {
		mv := entry.Metrics[name]
		body += fmt.Sprintf("%s: median=%.4f mean=%.4f failure_rate=%.2f\n",
			name, mv.Median, mv.Mean, mv.FailureRate)
	}

	return &JUnitFailure{
		Message: fmt.Sprintf("%s: task_success median %.2f over %d seeds", entry.ScenarioID, success, entry.SeedsRun),
		Type:    "ScenarioFailure",
		Body:    body,
	}
}

// WriteJUnitXML writes the scorecard as JUnit XML to path.
func WriteJUnitXML(card *models.Scorecard, path string) error {
	suites := ConvertToJUnit(card)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, output, 0o644); err != nil {
		return fmt.Errorf("writing JUnit XML: %w", err)
	}
	return nil
}
