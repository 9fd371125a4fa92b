package scheduler

import (
	"time"

	"github.com/example/drillcards/pkg/models"
)

// DefaultHorizonDays is the width of the upcoming-review histogram.
const DefaultHorizonDays = 7

// Stats summarizes an item pool.
type Stats struct {
	Total              int     `json:"total"`
	Due                int     `json:"due"`
	New                int     `json:"new"`
	Learning           int     `json:"learning"`
	Review             int     `json:"review"`
	Relearning         int     `json:"relearning"`
	AverageElapsedDays float64 `json:"averageElapsedDays"`
}

// ComputeStats tallies items by state in a single pass.
func ComputeStats(items []models.Item, now time.Time) Stats {
	stats := Stats{Total: len(items)}
	var elapsed int
	for _, item := range items {
		m := item.MemoryState
		if m.IsDue(now) {
			stats.Due++
		}
		switch m.State {
		case models.StateNew:
			stats.New++
		case models.StateLearning:
			stats.Learning++
		case models.StateReview:
			stats.Review++
		case models.StateRelearning:
			stats.Relearning++
		}
		elapsed += m.ElapsedDays
	}
	if len(items) > 0 {
		stats.AverageElapsedDays = float64(elapsed) / float64(len(items))
	}
	return stats
}

// UpcomingReviewCounts buckets items by whole days until due. Items already
// due or beyond the horizon are left out.
func UpcomingReviewCounts(items []models.Item, now time.Time, horizonDays int) []int {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	counts := make([]int, horizonDays)
	for _, item := range items {
		diff := item.MemoryState.Due.Sub(now)
		if diff < 0 {
			continue
		}
		day := int(diff / (24 * time.Hour))
		if day < horizonDays {
			counts[day]++
		}
	}
	return counts
}
