// Package app wires configuration, storage, decks and the reviewer together.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/drillcards/internal/config"
	"github.com/example/drillcards/internal/database"
	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/deck/decks"
	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/session"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/internal/spaced_repetition"
)

// App holds the wired process components
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Store    *database.Store
	Registry *deck.Registry
	Engine   *spaced_repetition.Engine
	Reviewer *session.Reviewer

	now func() time.Time
}

// New opens storage, registers the decks and loads the learning state.
// If the database cannot be opened the app still runs, without saving.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}

	db, err := database.Connect(cfg.Driver(), cfg.DSN())
	if err != nil {
		log.Warn("storage unavailable, progress will not be saved", "driver", cfg.Driver(), "error", err)
		db = nil
	}

	registry := deck.NewRegistry(log)
	decks.RegisterAll(registry)

	a := &App{
		Config:   cfg,
		Log:      log,
		Store:    database.NewStore(db, log),
		Registry: registry,
		Engine:   spaced_repetition.NewEngine(cfg.RequestRetention, cfg.MaximumInterval),
		now:      time.Now,
	}
	a.load(ctx)
	return a, nil
}

// load reads the stored state and activates it.
func (a *App) load(ctx context.Context) {
	now := a.now()
	a.activate(ctx, a.Store.LoadState(ctx, a.Registry.GenerateItemsForEnabledDecks, now), now)
}

// activate opens a new session if the last one went stale, builds the
// reviewer and makes sure every enabled deck has items.
func (a *App) activate(ctx context.Context, state snapshot.State, now time.Time) {
	if data, started := session.BeginIfStale(state.Session, now); started {
		state.Session = data
		a.Log.Info("started new session")
		if err := a.Store.SaveSession(ctx, data); err != nil && !errors.Is(err, database.ErrStorageUnavailable) {
			a.Log.Warn("failed to save session", "error", err)
		}
	}

	a.Reviewer = session.NewReviewer(state, a.Registry, a.Engine, a.Store, a.Log)
	for _, id := range state.Settings.EnabledDecks {
		if err := a.Reviewer.SetDeckEnabled(ctx, id, true, now); err != nil {
			a.Log.Warn("enabled deck is not available", "deck", id, "error", err)
		}
	}
}

// Now returns the app clock
func (a *App) Now() time.Time {
	return a.now()
}

// Export returns the current state as an export bundle
func (a *App) Export() ([]byte, error) {
	return snapshot.Export(a.Reviewer.Snapshot(), a.now())
}

// Import validates raw as an export bundle, replaces all stored state with
// it and activates it the way start-up does. Nothing is changed if
// validation or storage fails.
func (a *App) Import(ctx context.Context, raw []byte) (snapshot.State, error) {
	now := a.now()
	state, err := snapshot.Import(raw, now)
	if err != nil {
		return snapshot.State{}, err
	}
	for _, item := range state.Items {
		if !a.Registry.Has(item.DeckID) {
			a.Log.Warn("imported items belong to an unregistered deck and will not be scheduled", "deck", item.DeckID)
			break
		}
	}
	if err := a.Store.ReplaceAll(ctx, state); err != nil {
		return snapshot.State{}, fmt.Errorf("failed to store import: %w", err)
	}
	a.activate(ctx, state, now)
	return a.Reviewer.Snapshot(), nil
}

// Reset deletes all stored state and starts over with defaults
func (a *App) Reset(ctx context.Context) error {
	if err := a.Store.Clear(ctx); err != nil {
		return err
	}
	a.load(ctx)
	return nil
}

// Close releases the database
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Log.Warn("failed to close database", "error", err)
	}
	a.Log.Sync()
}
