// Package decks holds the built-in content decks.
package decks

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/pkg/models"
)

// Built-in deck ids
const (
	MultiplicationID = "multiplication"
	SubtractionID    = "subtraction"
	KatakanaID       = "katakana"
)

// RegisterAll registers every built-in deck. Call it once from the entry
// point before any scheduling.
func RegisterAll(r *deck.Registry) {
	r.Register(Multiplication{})
	r.Register(Subtraction{})
	r.Register(Katakana{})
}

func newItem(id, deckID string, content interface{}, now time.Time) (models.Item, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to encode content for %s: %w", id, err)
	}
	return models.Item{
		ID:          id,
		DeckID:      deckID,
		Content:     raw,
		MemoryState: models.NewMemoryState(now),
	}, nil
}

func decodeContent(item models.Item, deckID string, v interface{}) error {
	if item.DeckID != deckID {
		return fmt.Errorf("item %s belongs to deck %s, not %s", item.ID, item.DeckID, deckID)
	}
	if err := json.Unmarshal(item.Content, v); err != nil {
		return fmt.Errorf("failed to decode content of %s: %w", item.ID, err)
	}
	return nil
}

// shuffle randomizes presentation order so new items are not predictable.
func shuffle(items []models.Item) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
