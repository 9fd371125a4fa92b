package deck

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/pkg/models"
)

// ErrUnknownDeck matches any *UnknownDeckError via errors.Is.
var ErrUnknownDeck = errors.New("unknown deck")

// UnknownDeckError reports a deck id that was never registered.
type UnknownDeckError struct {
	DeckID string
}

func (e *UnknownDeckError) Error() string {
	return fmt.Sprintf("deck %q is not registered", e.DeckID)
}

func (e *UnknownDeckError) Is(target error) bool {
	return target == ErrUnknownDeck
}

// Registry maps deck ids to implementations. It is filled once at startup
// and only read afterwards; there is no way to unregister.
type Registry struct {
	mu    sync.RWMutex
	decks map[string]Deck
	order []string
	log   *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		decks: make(map[string]Deck),
		log:   log,
	}
}

// Register adds d. A second registration of the same id is ignored with a warning.
func (r *Registry) Register(d Deck) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decks[d.ID()]; exists {
		r.log.Warn("deck is already registered", "deck", d.ID())
		return
	}
	r.decks[d.ID()] = d
	r.order = append(r.order, d.ID())
}

// Resolve returns the deck for id or an *UnknownDeckError.
func (r *Registry) Resolve(id string) (Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decks[id]
	if !ok {
		return nil, &UnknownDeckError{DeckID: id}
	}
	return d, nil
}

// ResolveForItem resolves the deck owning item.
func (r *Registry) ResolveForItem(item models.Item) (Deck, error) {
	return r.Resolve(item.DeckID)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.Resolve(id)
	return err == nil
}

// All returns registered decks in registration order.
func (r *Registry) All() []Deck {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Deck, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.decks[id])
	}
	return out
}

// GenerateItemsForEnabledDecks generates items for every registered id in
// deckIDs. Unregistered ids are skipped with a warning and the remaining
// items are still returned.
func (r *Registry) GenerateItemsForEnabledDecks(deckIDs []string, now time.Time) []models.Item {
	var items []models.Item
	for _, id := range deckIDs {
		d, err := r.Resolve(id)
		if err != nil {
			r.log.Warn("skipping item generation for unregistered deck", "deck", id)
			continue
		}
		generated, err := d.GenerateItems(now)
		if err != nil {
			r.log.Error("failed to generate items", "deck", id, "error", err)
			continue
		}
		items = append(items, generated...)
	}
	return items
}

// FilterByEnabledDecks keeps items whose deck is in deckIDs, preserving order.
func FilterByEnabledDecks(items []models.Item, deckIDs []string) []models.Item {
	enabled := make(map[string]struct{}, len(deckIDs))
	for _, id := range deckIDs {
		enabled[id] = struct{}{}
	}
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if _, ok := enabled[item.DeckID]; ok {
			out = append(out, item)
		}
	}
	return out
}
