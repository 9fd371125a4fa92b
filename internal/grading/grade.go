package grading

import (
	"fmt"

	"github.com/example/drillcards/pkg/models"
)

// Grade is the discrete review outcome fed to the memory-state engine.
type Grade int

const (
	Again Grade = iota + 1
	Hard
	Good
	Easy
)

var gradeNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("invalid grade: %d", int(g))
	}
	return []byte(gradeNames[g]), nil
}

func (g *Grade) UnmarshalText(text []byte) error {
	for v := Again; v <= Easy; v++ {
		if gradeNames[v] == string(text) {
			*g = v
			return nil
		}
	}
	return fmt.Errorf("invalid grade: %q", text)
}

// GradeResponse combines correctness and latency into a grade.
//
// A wrong answer is always Again. Until the deck is warmed up every
// correct answer is Good. Afterwards the latency is placed against the
// deck's percentiles, and a correct answer slower than p75 is Again:
// correct but not yet fluent counts as not mastered.
func GradeResponse(correct bool, latencyMs float64, stats models.SpeedStats) Grade {
	if !correct {
		return Again
	}
	if !stats.WarmedUp {
		return Good
	}
	switch p := stats.Percentiles; {
	case latencyMs <= p.P25:
		return Easy
	case latencyMs <= p.P50:
		return Good
	case latencyMs <= p.P75:
		return Hard
	default:
		return Again
	}
}
