package grading

import (
	"math"
	"sort"

	"github.com/example/drillcards/pkg/models"
)

// DefaultWarmupTarget is the sample count after which latency grading starts.
const DefaultWarmupTarget = 50

// NewSpeedStats returns empty statistics for a deck seen for the first time.
func NewSpeedStats() models.SpeedStats {
	return models.SpeedStats{Samples: []float64{}}
}

// UpdateSpeedStats appends latencyMs and recomputes every percentile from
// scratch. The receiver's samples are never modified.
func UpdateSpeedStats(current models.SpeedStats, latencyMs float64, warmupTarget int) models.SpeedStats {
	samples := make([]float64, len(current.Samples), len(current.Samples)+1)
	copy(samples, current.Samples)
	samples = append(samples, latencyMs)

	return models.SpeedStats{
		Samples:     samples,
		Percentiles: ComputePercentiles(samples),
		WarmedUp:    len(samples) >= warmupTarget,
	}
}

// ComputePercentiles uses the value at index floor(n*p) of the sorted
// samples, without interpolation. Persisted statistics depend on this rule.
func ComputePercentiles(samples []float64) models.Percentiles {
	if len(samples) == 0 {
		return models.Percentiles{}
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	at := func(p float64) float64 {
		return sorted[int(math.Floor(float64(len(sorted))*p))]
	}
	return models.Percentiles{
		P25: at(0.25),
		P50: at(0.5),
		P75: at(0.75),
		P90: at(0.9),
	}
}
