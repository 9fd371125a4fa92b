package session

import (
	"sort"
	"time"

	"github.com/example/drillcards/pkg/models"
)

// RecentWindow is the number of latest responses used for recent accuracy.
const RecentWindow = 20

// DeckProgress is the warm-up progress of one deck's speed statistics.
type DeckProgress struct {
	DeckID      string
	Samples     int
	Target      int
	WarmedUp    bool
	Percentiles models.Percentiles
}

// Summary is the progress overview shown by the front-ends.
type Summary struct {
	TotalResponses   int
	CorrectResponses int
	Accuracy         float64 // 0..1
	RecentAccuracy   float64 // over the last RecentWindow responses
	AverageCorrectMs float64
	SessionStart     time.Time
	SessionTime      time.Duration
	Decks            []DeckProgress
}

// Summarize computes a Summary from session history. Decks are sorted by id.
func Summarize(data models.SessionData, warmupTarget int) Summary {
	s := Summary{
		TotalResponses: len(data.Responses),
		SessionStart:   data.SessionStartTime,
		SessionTime:    time.Duration(data.TotalSessionTime) * time.Millisecond,
	}

	var correctTime float64
	for _, r := range data.Responses {
		if r.Correct {
			s.CorrectResponses++
			correctTime += r.ResponseTimeMs
		}
	}
	if s.TotalResponses > 0 {
		s.Accuracy = float64(s.CorrectResponses) / float64(s.TotalResponses)
	}
	if s.CorrectResponses > 0 {
		s.AverageCorrectMs = correctTime / float64(s.CorrectResponses)
	}

	recent := data.Responses
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	if len(recent) > 0 {
		n := 0
		for _, r := range recent {
			if r.Correct {
				n++
			}
		}
		s.RecentAccuracy = float64(n) / float64(len(recent))
	}

	for id, stats := range data.SpeedStats {
		s.Decks = append(s.Decks, DeckProgress{
			DeckID:      id,
			Samples:     len(stats.Samples),
			Target:      warmupTarget,
			WarmedUp:    stats.WarmedUp,
			Percentiles: stats.Percentiles,
		})
	}
	sort.Slice(s.Decks, func(i, j int) bool { return s.Decks[i].DeckID < s.Decks[j].DeckID })

	return s
}
