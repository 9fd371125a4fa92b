package spaced_repetition

import (
	"fmt"
	"time"

	"github.com/example/drillcards/internal/grading"
	"github.com/example/drillcards/pkg/models"
	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"
)

// Engine advances memory states with the FSRS algorithm.
type Engine struct {
	fsrs *fsrs.FSRS
}

// NewEngine creates an engine. Zero values keep the library defaults.
func NewEngine(requestRetention, maximumInterval float64) *Engine {
	params := fsrs.DefaultParam()
	if requestRetention > 0 {
		params.RequestRetention = requestRetention
	}
	if maximumInterval > 0 {
		params.MaximumInterval = maximumInterval
	}
	return &Engine{fsrs: fsrs.NewFSRS(params)}
}

// Advance returns the memory state after reviewing with grade at now.
// The input state is not modified.
func (e *Engine) Advance(state models.MemoryState, grade grading.Grade, now time.Time) (models.MemoryState, error) {
	if !grade.IsValid() {
		return models.MemoryState{}, fmt.Errorf("cannot advance memory state: %v", grade)
	}
	record := e.fsrs.Repeat(toCard(state), now)
	info, ok := record[fsrs.Rating(grade)]
	if !ok {
		return models.MemoryState{}, fmt.Errorf("no schedule for grade %v", grade)
	}
	return fromCard(info.Card), nil
}

func toCard(m models.MemoryState) fsrs.Card {
	card := fsrs.Card{
		Due:           m.Due,
		Stability:     m.Stability,
		Difficulty:    m.Difficulty,
		ElapsedDays:   nonNegative(m.ElapsedDays),
		ScheduledDays: nonNegative(m.ScheduledDays),
		Reps:          nonNegative(m.Reps),
		Lapses:        nonNegative(m.Lapses),
		State:         fsrs.State(m.State),
	}
	if m.LastReview != nil {
		card.LastReview = *m.LastReview
	}
	return card
}

func fromCard(c fsrs.Card) models.MemoryState {
	m := models.MemoryState{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   int(c.ElapsedDays),
		ScheduledDays: int(c.ScheduledDays),
		Reps:          int(c.Reps),
		Lapses:        int(c.Lapses),
		State:         models.State(c.State),
	}
	if !c.LastReview.IsZero() {
		last := c.LastReview
		m.LastReview = &last
	}
	return m
}

func nonNegative(v int) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
