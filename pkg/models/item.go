package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// State is the maturity stage of an item's memory state.
// Values match the numeric encoding used on the wire.
type State int

const (
	StateNew State = iota
	StateLearning
	StateReview
	StateRelearning
)

var stateNames = [...]string{
	StateNew:        "New",
	StateLearning:   "Learning",
	StateReview:     "Review",
	StateRelearning: "Relearning",
}

func (s State) String() string {
	if s >= StateNew && s <= StateRelearning {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MemoryState is the spaced-repetition state of a single item.
// It is only ever replaced by the memory-state engine.
type MemoryState struct {
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         State      `json:"state"`
	LastReview    *time.Time `json:"last_review,omitempty"`
}

// NewMemoryState returns the state of an item that was never reviewed,
// due immediately.
func NewMemoryState(now time.Time) MemoryState {
	return MemoryState{Due: now, State: StateNew}
}

// IsDue reports whether the state is due at now.
func (m MemoryState) IsDue(now time.Time) bool {
	return !m.Due.After(now)
}

// Item is one reviewable unit: deck-specific content plus memory state.
type Item struct {
	ID          string          `json:"id"`
	DeckID      string          `json:"deckId"`
	Content     json.RawMessage `json:"content"`
	MemoryState MemoryState     `json:"memoryState"`
}

// CloneItems returns a shallow copy of items so callers can replace
// elements without touching a published snapshot.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
