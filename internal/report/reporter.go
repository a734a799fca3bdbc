// Package report renders analyses for terminals and exports them to files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

// DefaultPrecision is the number of decimal places used when none is configured
const DefaultPrecision int32 = 4

// Reporter formats analysis output rounded to a fixed number of decimal places
type Reporter struct {
	precision int32
}

// NewReporter creates a new reporter. A negative precision selects DefaultPrecision.
func NewReporter(precision int32) *Reporter {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Reporter{precision: precision}
}

// GenerateConsoleReport formats a run as a per-section table for terminal output
func (r *Reporter) GenerateConsoleReport(run *models.AnalysisRun, summary overtaking.Summary) string {
	var cfg overtaking.Config
	_ = json.Unmarshal(run.Config, &cfg)
	sections := run.Sections()

	var builder strings.Builder
	builder.WriteString("Overtaking Analysis Report\n")
	builder.WriteString("==========================\n")
	if run.Label != "" {
		builder.WriteString(fmt.Sprintf("Label: %s\n", run.Label))
	}
	builder.WriteString(fmt.Sprintf("Run: %s (%s)\n", run.ID, run.Mode))
	builder.WriteString(fmt.Sprintf("Seed: %d\n", run.Seed))
	builder.WriteString(fmt.Sprintf("Sections: %d  Simulations: %d\n", sections, cfg.Simulations))
	builder.WriteString("\n")

	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tPOSITION\tZONE\tPROBABILITY\tSUCCESS")
	for s := 0; s < sections; s++ {
		zone := ""
		if cfg.Sections == sections && cfg.IsZone(s) {
			zone = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s%%\t%s%%\n",
			s,
			r.format(float64(s)/float64(sections)),
			zone,
			r.percent(run.AverageProbabilities[s]),
			r.percent(run.SuccessRates[s]),
		)
	}
	tw.Flush()

	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Mean Probability: %s%% (std %s)\n", r.percent(summary.MeanProbability), r.format(summary.StdProbability)))
	builder.WriteString(fmt.Sprintf("Mean Success Rate: %s%% (std %s)\n", r.percent(summary.MeanSuccessRate), r.format(summary.StdSuccessRate)))
	builder.WriteString(fmt.Sprintf("Best Section: %d  Worst Section: %d\n", summary.BestSection, summary.WorstSection))
	builder.WriteString(fmt.Sprintf("Probability P05/P95: %s / %s\n", r.format(summary.ProbabilityP05), r.format(summary.ProbabilityP95)))
	return builder.String()
}

// GenerateSimulationReport lists raw section probabilities
func (r *Reporter) GenerateSimulationReport(outcome *service.SimulationOutcome) string {
	var builder strings.Builder
	builder.WriteString("Overtaking Simulation\n")
	builder.WriteString("=====================\n")
	builder.WriteString(fmt.Sprintf("Seed: %d\n\n", outcome.Seed))

	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tPROBABILITY")
	for s, p := range outcome.Probabilities {
		fmt.Fprintf(tw, "%d\t%s\n", s, r.format(p))
	}
	tw.Flush()
	return builder.String()
}

// GenerateSweepReport formats a parameter sweep
func (r *Reporter) GenerateSweepReport(parameter string, points []service.SweepPoint) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Sweep: %s\n", parameter))
	builder.WriteString(strings.Repeat("=", len("Sweep: ")+len(parameter)) + "\n")

	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tMEAN PROBABILITY\tMEAN SUCCESS\tBEST SECTION")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s%%\t%s%%\t%d\n",
			r.format(p.Value),
			r.percent(p.MeanProbability),
			r.percent(p.MeanSuccessRate),
			p.BestSection,
		)
	}
	tw.Flush()
	return builder.String()
}

// GenerateComparisonReport formats a with/without overtake zone comparison
func (r *Reporter) GenerateComparisonReport(comparison *service.ZoneComparison) string {
	var builder strings.Builder
	builder.WriteString("Overtake Zone Comparison\n")
	builder.WriteString("========================\n")
	builder.WriteString(fmt.Sprintf("Seed: %d  Zones: %v\n\n", comparison.Seed, comparison.Config.OvertakeZones))

	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tZONE\tWITH ZONES\tWITHOUT ZONES\tDELTA")
	for s := range comparison.Deltas {
		zone := ""
		if comparison.Zones[s] {
			zone = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s,
			zone,
			r.format(comparison.WithZones[s]),
			r.format(comparison.WithoutZones[s]),
			r.format(comparison.Deltas[s]),
		)
	}
	tw.Flush()
	return builder.String()
}

// GenerateHistoryReport lists stored runs, newest first
func (r *Reporter) GenerateHistoryReport(runs []*models.AnalysisRun) string {
	if len(runs) == 0 {
		return "No stored analyses\n"
	}

	var builder strings.Builder
	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMODE\tLABEL\tSECTIONS\tMEAN PROBABILITY\tBEST SECTION")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s%%\t%d\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Label,
			run.Sections(),
			r.percent(run.MeanProbability),
			run.BestSection,
		)
	}
	tw.Flush()
	return builder.String()
}

// GenerateCSVExport exports per-section values for spreadsheets
func (r *Reporter) GenerateCSVExport(result overtaking.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	sections := len(result.AverageProbabilities)
	w := csv.NewWriter(file)
	if err := w.Write([]string{"section", "position", "average_probability", "success_rate"}); err != nil {
		return err
	}
	for s := 0; s < sections; s++ {
		record := []string{
			strconv.Itoa(s),
			r.format(float64(s) / float64(sections)),
			r.format(result.AverageProbabilities[s]),
			r.format(result.SuccessRates[s]),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportToJSON writes the run as indented JSON
func (r *Reporter) ExportToJSON(run *models.AnalysisRun, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func (r *Reporter) format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(r.precision)
}

// percent renders a [0,1] fraction as a percentage with two fewer places than the fraction
func (r *Reporter) percent(v float64) string {
	places := r.precision - 2
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(places)
}
