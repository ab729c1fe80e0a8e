package output

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/domain"
)

// Report aggregates everything one planner run produced. Sections left
// nil are skipped by the formatters, so the same type serves the plan,
// simulate and recommend commands.
type Report struct {
	Scenario domain.Scenario `json:"scenario"`

	Plan           *calculation.PlanResult        `json:"plan,omitempty"`
	Simulation     *calculation.SimulationSummary `json:"simulation,omitempty"`
	Recommendation *calculation.Recommendation    `json:"recommendation,omitempty"`

	Assumptions   []string `json:"assumptions,omitempty"`
	PriceWarnings []string `json:"price_warnings,omitempty"`
}

// GenerateReport resolves the format name and writes the report to a
// timestamped file, returning the filename.
func GenerateReport(report *Report, format string) (string, error) {
	f := GetFormatterByName(format)
	if f == nil {
		return "", fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	return WriteFormatted(f, report, extensionFor(f.Name()))
}

func extensionFor(name string) string {
	switch {
	case strings.Contains(name, "csv"):
		return "csv"
	case name == "json":
		return "json"
	default:
		return "txt"
	}
}

// SaveScenario writes a scenario as YAML so a run can be shared and
// replayed with --scenario.
func SaveScenario(sc domain.Scenario, filename string) error {
	b, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
