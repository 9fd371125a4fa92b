package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/grading"
	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/scheduler"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/internal/spaced_repetition"
	"github.com/example/drillcards/pkg/models"
)

// ErrUnknownItem is returned when an answer names an item not in the pool.
var ErrUnknownItem = errors.New("unknown item")

// Store persists the three documents. Failures are logged by the Reviewer
// and never roll back in-memory state.
type Store interface {
	SaveItems(ctx context.Context, items []models.Item) error
	SaveSession(ctx context.Context, data models.SessionData) error
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// Question is an item ready to be shown.
type Question struct {
	Item      models.Item
	DeckID    string
	DeckName  string
	Prompt    string
	InputType deck.InputType
}

// Feedback describes the outcome of one submitted answer.
type Feedback struct {
	ItemID          string
	DeckID          string
	Correct         bool
	CanonicalAnswer string
	UserAnswer      string
	AnswerDisplay   string
	Grade           grading.Grade
	LatencyMs       float64
	NextDue         time.Time
	SoundCue        bool
}

// SettingsUpdate changes preferences. Nil fields are left alone; decks are
// toggled with SetDeckEnabled.
type SettingsUpdate struct {
	WarmupTarget        *int
	SoundEnabled        *bool
	ShowUpcomingReviews *bool
}

// Reviewer serialises every read and write of the learning state. Published
// slices and maps are never modified in place.
type Reviewer struct {
	mu       sync.Mutex
	state    snapshot.State
	registry *deck.Registry
	engine   *spaced_repetition.Engine
	store    Store
	rnd      *rand.Rand
	log      *logger.Logger
}

// NewReviewer takes ownership of state.
func NewReviewer(state snapshot.State, registry *deck.Registry, engine *spaced_repetition.Engine, store Store, log *logger.Logger) *Reviewer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reviewer{
		state:    state,
		registry: registry,
		engine:   engine,
		store:    store,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
}

// SetRand replaces the random source used for new-item picks.
func (r *Reviewer) SetRand(rnd *rand.Rand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd = rnd
}

// pool is the set of items that can be scheduled: enabled and backed by a
// registered deck. Items of an unregistered deck stay stored but hidden.
func (r *Reviewer) pool() []models.Item {
	enabled := make([]string, 0, len(r.state.Settings.EnabledDecks))
	for _, id := range r.state.Settings.EnabledDecks {
		if r.registry.Has(id) {
			enabled = append(enabled, id)
		}
	}
	return deck.FilterByEnabledDecks(r.state.Items, enabled)
}

// Next returns the next question from the enabled decks, or nil when the
// pool is empty.
func (r *Reviewer) Next(now time.Time) (*Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	picked := scheduler.SelectNext(r.pool(), now, r.rnd)
	if picked == nil {
		return nil, nil
	}
	item := *picked
	d, err := r.registry.ResolveForItem(item)
	if err != nil {
		return nil, err
	}
	prompt, err := d.FormatQuestion(item)
	if err != nil {
		return nil, fmt.Errorf("error formatting question for %s: %w", item.ID, err)
	}
	return &Question{
		Item:      item,
		DeckID:    d.ID(),
		DeckName:  d.Name(),
		Prompt:    prompt,
		InputType: d.InputType(),
	}, nil
}

// Submit runs the answer pipeline for itemID: check, update speed stats,
// grade, advance the memory state and record the response. The whole step
// is committed at once; on error nothing changes.
func (r *Reviewer) Submit(ctx context.Context, itemID, raw string, latency time.Duration, now time.Time) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(itemID)
	if idx < 0 {
		return Feedback{}, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	item := r.state.Items[idx]

	d, err := r.registry.ResolveForItem(item)
	if err != nil {
		return Feedback{}, err
	}
	check, err := d.CheckAnswer(item, raw)
	if err != nil {
		return Feedback{}, fmt.Errorf("error checking answer for %s: %w", item.ID, err)
	}
	display, err := d.CanonicalAnswerDisplay(item)
	if err != nil {
		return Feedback{}, fmt.Errorf("error formatting answer for %s: %w", item.ID, err)
	}

	latencyMs := float64(latency) / float64(time.Millisecond)
	current, ok := r.state.Session.SpeedStats[item.DeckID]
	if !ok {
		current = grading.NewSpeedStats()
	}
	stats := grading.UpdateSpeedStats(current, latencyMs, r.state.Settings.WarmupTarget)
	grade := grading.GradeResponse(check.Correct, latencyMs, stats)

	memory, err := r.engine.Advance(item.MemoryState, grade, now)
	if err != nil {
		return Feedback{}, fmt.Errorf("error advancing memory state for %s: %w", item.ID, err)
	}

	items := models.CloneItems(r.state.Items)
	items[idx].MemoryState = memory

	sess := r.state.Session.Clone()
	sess.SpeedStats[item.DeckID] = stats
	sess.Responses = append(sess.Responses, models.ResponseRecord{
		ItemID:         item.ID,
		Answer:         models.Answer(check.UserAnswer),
		Correct:        check.Correct,
		ResponseTimeMs: latencyMs,
		Timestamp:      now,
	})
	sess.LastReviewDate = now
	sess.TotalSessionTime += int64(latencyMs)

	r.state.Items = items
	r.state.Session = sess

	r.log.Debug("answer graded", "item", item.ID, "deck", item.DeckID, "correct", check.Correct, "grade", grade.String(), "latency_ms", latencyMs)
	r.persistItems(ctx)
	r.persistSession(ctx)

	return Feedback{
		ItemID:          item.ID,
		DeckID:          item.DeckID,
		Correct:         check.Correct,
		CanonicalAnswer: check.CanonicalAnswer,
		UserAnswer:      check.UserAnswer,
		AnswerDisplay:   display,
		Grade:           grade,
		LatencyMs:       latencyMs,
		NextDue:         memory.Due,
		SoundCue:        r.state.Settings.SoundEnabled && check.Correct,
	}, nil
}

// CheckCorrection reports whether raw is a correct retype of itemID's
// answer. It never changes state.
func (r *Reviewer) CheckCorrection(itemID, raw string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(itemID)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	item := r.state.Items[idx]
	d, err := r.registry.ResolveForItem(item)
	if err != nil {
		return false, err
	}
	check, err := d.CheckAnswer(item, raw)
	if err != nil {
		return false, err
	}
	return check.Correct, nil
}

// SetDeckEnabled toggles a deck. Enabling generates items only when the pool
// holds none for the deck, so earlier progress is kept. Disabling keeps the
// items.
func (r *Reviewer) SetDeckEnabled(ctx context.Context, deckID string, enabled bool, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.state.Settings
	if !enabled {
		if !settings.DeckEnabled(deckID) {
			return nil
		}
		decks := make([]string, 0, len(settings.EnabledDecks))
		for _, id := range settings.EnabledDecks {
			if id != deckID {
				decks = append(decks, id)
			}
		}
		settings.EnabledDecks = decks
		r.state.Settings = settings
		r.log.Info("deck disabled", "deck", deckID)
		r.persistSettings(ctx)
		return nil
	}

	d, err := r.registry.Resolve(deckID)
	if err != nil {
		return err
	}

	hasItems := false
	for _, item := range r.state.Items {
		if item.DeckID == deckID {
			hasItems = true
			break
		}
	}
	if !hasItems {
		generated, err := d.GenerateItems(now)
		if err != nil {
			return fmt.Errorf("error generating items for %s: %w", deckID, err)
		}
		items := make([]models.Item, 0, len(r.state.Items)+len(generated))
		items = append(items, r.state.Items...)
		items = append(items, generated...)
		r.state.Items = items
		r.log.Info("generated deck items", "deck", deckID, "count", len(generated))
		r.persistItems(ctx)
	}

	if !settings.DeckEnabled(deckID) {
		decks := make([]string, 0, len(settings.EnabledDecks)+1)
		decks = append(decks, settings.EnabledDecks...)
		settings.EnabledDecks = append(decks, deckID)
		r.state.Settings = settings
		r.log.Info("deck enabled", "deck", deckID)
		r.persistSettings(ctx)
	}
	return nil
}

// UpdateSettings applies u. A warm-up target below one is rejected.
func (r *Reviewer) UpdateSettings(ctx context.Context, u SettingsUpdate) (models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.state.Settings
	if u.WarmupTarget != nil {
		if *u.WarmupTarget < 1 {
			return settings, fmt.Errorf("warm-up target must be at least 1, got %d", *u.WarmupTarget)
		}
		settings.WarmupTarget = *u.WarmupTarget
	}
	if u.SoundEnabled != nil {
		settings.SoundEnabled = *u.SoundEnabled
	}
	if u.ShowUpcomingReviews != nil {
		settings.ShowUpcomingReviews = *u.ShowUpcomingReviews
	}
	r.state.Settings = settings
	r.persistSettings(ctx)
	return settings, nil
}

// Snapshot returns the current state. The returned values must not be
// modified.
func (r *Reviewer) Snapshot() snapshot.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stats counts the enabled pool.
func (r *Reviewer) Stats(now time.Time) scheduler.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return scheduler.ComputeStats(r.pool(), now)
}

// Upcoming returns per-day due counts for the enabled pool.
func (r *Reviewer) Upcoming(now time.Time, days int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return scheduler.UpcomingReviewCounts(r.pool(), now, days)
}

// DueCount returns how many enabled items are due at now.
func (r *Reviewer) DueCount(now time.Time) int {
	return r.Stats(now).Due
}

// Summary summarises the response history.
func (r *Reviewer) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summarize(r.state.Session, r.state.Settings.WarmupTarget)
}

func (r *Reviewer) indexOf(itemID string) int {
	for i, item := range r.state.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (r *Reviewer) persistItems(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveItems(ctx, r.state.Items); err != nil {
		r.log.Warn("failed to save items", "error", err)
	}
}

func (r *Reviewer) persistSession(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveSession(ctx, r.state.Session); err != nil {
		r.log.Warn("failed to save session", "error", err)
	}
}

func (r *Reviewer) persistSettings(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveSettings(ctx, r.state.Settings); err != nil {
		r.log.Warn("failed to save settings", "error", err)
	}
}
