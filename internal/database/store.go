package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/pkg/models"
)

// ErrStorageUnavailable is returned by writes when no database is open.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ItemGenerator builds fresh items for the given decks.
type ItemGenerator func(deckIDs []string, now time.Time) []models.Item

// Store keeps the items, session and settings documents. Loads never fail:
// missing, corrupt or unreachable documents fall back to defaults.
type Store struct {
	db   *sqlx.DB
	repo *DocumentRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewStore creates a store. A nil db gives a store whose loads return
// defaults and whose writes return ErrStorageUnavailable.
func NewStore(db *sqlx.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{db: db, log: log, now: time.Now}
	if db != nil {
		s.repo = NewDocumentRepository(db)
	}
	return s
}

// Available reports whether a database is open.
func (s *Store) Available() bool {
	return s.db != nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string) []byte {
	if s.repo == nil {
		return nil
	}
	doc, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn("failed to load document, using defaults", "key", key, "error", err)
		return nil
	}
	if doc == nil {
		return nil
	}
	return []byte(doc.Body)
}

// LoadSettings returns stored settings, upcasting and re-saving older shapes.
func (s *Store) LoadSettings(ctx context.Context) models.Settings {
	raw := s.load(ctx, snapshot.KeySettings)
	if raw == nil {
		return snapshot.DefaultSettings()
	}
	settings, migrated, err := snapshot.NormalizeSettings(raw)
	if err != nil {
		s.log.Warn("stored settings are corrupt, using defaults", "error", err)
		return snapshot.DefaultSettings()
	}
	if migrated {
		s.log.Info("migrated settings document")
		s.logSaveError(s.SaveSettings(ctx, settings))
	}
	return settings
}

// LoadSession returns the stored session, or a new one starting at now.
func (s *Store) LoadSession(ctx context.Context, now time.Time) models.SessionData {
	raw := s.load(ctx, snapshot.KeySession)
	if raw == nil {
		return snapshot.DefaultSession(now)
	}
	data, migrated, err := snapshot.NormalizeSession(raw, now)
	if err != nil {
		s.log.Warn("stored session is corrupt, starting fresh", "error", err)
		return snapshot.DefaultSession(now)
	}
	if migrated {
		s.log.Info("migrated session document")
		s.logSaveError(s.SaveSession(ctx, data))
	}
	return data
}

// LoadItems returns the stored items. When none are stored, or they cannot
// be read, items are generated for enabledDecks and saved.
func (s *Store) LoadItems(ctx context.Context, enabledDecks []string, generate ItemGenerator, now time.Time) []models.Item {
	raw := s.load(ctx, snapshot.KeyItems)
	if raw != nil {
		items, migrated, err := snapshot.NormalizeItems(raw)
		switch {
		case err != nil:
			s.log.Warn("stored items are corrupt, regenerating", "error", err)
		case len(items) == 0:
			s.log.Info("no stored items, generating")
		default:
			if migrated {
				s.log.Info("migrated items document", "count", len(items))
				s.logSaveError(s.SaveItems(ctx, items))
			}
			return items
		}
	}

	items := generate(enabledDecks, now)
	s.log.Info("generated items", "count", len(items), "decks", enabledDecks)
	s.logSaveError(s.SaveItems(ctx, items))
	return items
}

// LoadState loads all three documents.
func (s *Store) LoadState(ctx context.Context, generate ItemGenerator, now time.Time) snapshot.State {
	settings := s.LoadSettings(ctx)
	return snapshot.State{
		Settings: settings,
		Session:  s.LoadSession(ctx, now),
		Items:    s.LoadItems(ctx, settings.EnabledDecks, generate, now),
	}
}

func (s *Store) logSaveError(err error) {
	if err != nil && !errors.Is(err, ErrStorageUnavailable) {
		s.log.Warn("failed to persist document", "error", err)
	}
}

func (s *Store) put(ctx context.Context, repo *DocumentRepository, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return repo.Put(ctx, key, body, s.now())
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	if s.repo == nil {
		return ErrStorageUnavailable
	}
	if err := s.put(ctx, s.repo, key, v); err != nil {
		return err
	}
	return s.put(ctx, s.repo, snapshot.KeyDataVersion, snapshot.DataVersion)
}

// SaveItems stores the item pool.
func (s *Store) SaveItems(ctx context.Context, items []models.Item) error {
	return s.save(ctx, snapshot.KeyItems, nonNilItems(items))
}

// SaveSession stores session data.
func (s *Store) SaveSession(ctx context.Context, data models.SessionData) error {
	return s.save(ctx, snapshot.KeySession, data)
}

// SaveSettings stores settings.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.save(ctx, snapshot.KeySettings, settings)
}

// ReplaceAll stores a complete state in one transaction, as done on import.
func (s *Store) ReplaceAll(ctx context.Context, state snapshot.State) (err error) {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	repo := NewDocumentRepository(tx)
	docs := []struct {
		key string
		v   interface{}
	}{
		{snapshot.KeyItems, nonNilItems(state.Items)},
		{snapshot.KeySession, state.Session},
		{snapshot.KeySettings, state.Settings},
		{snapshot.KeyDataVersion, snapshot.DataVersion},
	}
	for _, d := range docs {
		if err = s.put(ctx, repo, d.key, d.v); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	s.log.Info("replaced stored state", "items", len(state.Items))
	return nil
}

// Clear deletes every stored document.
func (s *Store) Clear(ctx context.Context) error {
	if s.repo == nil {
		return ErrStorageUnavailable
	}
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.log.Info("cleared stored state")
	return nil
}

func nonNilItems(items []models.Item) []models.Item {
	if items == nil {
		return []models.Item{}
	}
	return items
}
