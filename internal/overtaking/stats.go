package overtaking

import (
	"math"
	"sort"
)

// Summary condenses a Result into headline statistics.
type Summary struct {
	Sections        int     `json:"sections"`
	MeanProbability float64 `json:"mean_probability"`
	StdProbability  float64 `json:"std_probability"`
	MeanSuccessRate float64 `json:"mean_success_rate"`
	StdSuccessRate  float64 `json:"std_success_rate"`
	BestSection     int     `json:"best_section"`
	WorstSection    int     `json:"worst_section"`
	ProbabilityP05  float64 `json:"probability_p05"`
	ProbabilityP95  float64 `json:"probability_p95"`
}

// Summarize computes the Summary of r. Best and worst are -1 for an empty result.
func Summarize(r Result) Summary {
	meanP, stdP := meanStd(r.AverageProbabilities)
	meanS, stdS := meanStd(r.SuccessRates)
	best, worst := extremes(r.AverageProbabilities)
	return Summary{
		Sections:        len(r.AverageProbabilities),
		MeanProbability: meanP,
		StdProbability:  stdP,
		MeanSuccessRate: meanS,
		StdSuccessRate:  stdS,
		BestSection:     best,
		WorstSection:    worst,
		ProbabilityP05:  percentile(r.AverageProbabilities, 0.05),
		ProbabilityP95:  percentile(r.AverageProbabilities, 0.95),
	}
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean(values []float64) float64 {
	mean, _ := meanStd(values)
	return mean
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// extremes returns the first index of the maximum and of the minimum.
func extremes(values []float64) (int, int) {
	if len(values) == 0 {
		return -1, -1
	}
	best, worst := 0, 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
		if v < values[worst] {
			worst = i
		}
	}
	return best, worst
}
