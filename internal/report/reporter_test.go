package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

func sampleRun(t *testing.T) *models.AnalysisRun {
	t.Helper()
	cfg := overtaking.DefaultConfig()
	cfg.Sections = 5
	cfg.OvertakeZones = []float64{0.2}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	return &models.AnalysisRun{
		ID:                   uuid.New(),
		Label:                "spa",
		Mode:                 models.ModeAnalyse,
		Seed:                 42,
		Config:               raw,
		AverageProbabilities: []float64{0.04, 0.05, 0.04, 0.04, 0.04},
		SuccessRates:         []float64{0.03, 0.0425, 0.04, 0.035, 0.0312345},
		MeanProbability:      0.042,
		MeanSuccessRate:      0.0357469,
		BestSection:          1,
		CreatedAt:            time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	run := sampleRun(t)
	summary := overtaking.Summarize(overtaking.Result{
		AverageProbabilities: run.AverageProbabilities,
		SuccessRates:         run.SuccessRates,
	})

	out := NewReporter(4).GenerateConsoleReport(run, summary)

	assert.Contains(t, out, "Overtaking Analysis Report")
	assert.Contains(t, out, "Label: spa")
	assert.Contains(t, out, "Seed: 42")
	assert.Contains(t, out, "Sections: 5  Simulations: 1000")
	assert.Contains(t, out, "SECTION")
	assert.Contains(t, out, "Best Section: 1")

	lines := strings.Split(out, "\n")
	var zoneRows []string
	for _, line := range lines {
		if strings.Contains(line, "*") {
			zoneRows = append(zoneRows, line)
		}
	}
	require.Len(t, zoneRows, 1)
	assert.True(t, strings.HasPrefix(zoneRows[0], "1 "))
	assert.Contains(t, zoneRows[0], "5.00%")
}

func TestFormatRoundsToPrecision(t *testing.T) {
	r := NewReporter(3)
	assert.Equal(t, "0.123", r.format(0.1234))
	assert.Equal(t, "0.124", r.format(0.1235))
	assert.Equal(t, "0.500", r.format(0.5))
	assert.Equal(t, "12.3", r.percent(0.1234))

	assert.Equal(t, "4.20", NewReporter(-1).percent(0.042))
}

func TestGenerateSweepReport(t *testing.T) {
	out := NewReporter(2).GenerateSweepReport("weather_condition", []service.SweepPoint{
		{Value: 0.5, MeanProbability: 0.02, MeanSuccessRate: 0.017, BestSection: 2},
		{Value: 1.0, MeanProbability: 0.04, MeanSuccessRate: 0.034, BestSection: 8},
	})

	assert.Contains(t, out, "Sweep: weather_condition")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "1.00")
	assert.Contains(t, out, "MEAN PROBABILITY")
}

func TestGenerateComparisonReport(t *testing.T) {
	cfg := overtaking.DefaultConfig()
	cfg.Sections = 2
	out := NewReporter(4).GenerateComparisonReport(&service.ZoneComparison{
		Config:       cfg,
		Seed:         9,
		Zones:        []bool{false, true},
		WithZones:    []float64{0.04, 0.05},
		WithoutZones: []float64{0.04, 0.04},
		Deltas:       []float64{0, 0.01},
	})

	assert.Contains(t, out, "Seed: 9")
	assert.Contains(t, out, "0.0100")
	assert.Contains(t, out, "*")
}

func TestGenerateHistoryReport(t *testing.T) {
	r := NewReporter(4)
	assert.Equal(t, "No stored analyses\n", r.GenerateHistoryReport(nil))

	run := sampleRun(t)
	out := r.GenerateHistoryReport([]*models.AnalysisRun{run})
	assert.Contains(t, out, run.ID.String())
	assert.Contains(t, out, "2024-05-01 12:00:00")
	assert.Contains(t, out, "4.20%")
}

func TestGenerateCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.csv")
	result := overtaking.Result{
		AverageProbabilities: []float64{0.04, 0.05},
		SuccessRates:         []float64{0.03, 0.04251},
	}

	require.NoError(t, NewReporter(4).GenerateCSVExport(result, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"section", "position", "average_probability", "success_rate"}, records[0])
	assert.Equal(t, []string{"1", "0.5000", "0.0500", "0.0425"}, records[2])
}

func TestExportToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	run := sampleRun(t)

	require.NoError(t, NewReporter(4).ExportToJSON(run, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.AnalysisRun
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, run.ID, decoded.ID)
	assert.Equal(t, run.AverageProbabilities, decoded.AverageProbabilities)
}
