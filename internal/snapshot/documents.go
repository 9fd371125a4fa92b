// Package snapshot defines the persisted documents, upcasts older shapes
// of them and builds export bundles.
package snapshot

import (
	"time"

	"github.com/example/drillcards/internal/grading"
	"github.com/example/drillcards/pkg/models"
)

// DataVersion is stored next to the documents. Migration never relies on
// it; shapes are detected from the keys present.
const DataVersion = "2.0.0"

// Document keys, kept from the original local-storage layout
const (
	KeyItems       = "multiplicationCards"
	KeySession     = "sessionData"
	KeySettings    = "appSettings"
	KeyDataVersion = "dataVersion"
)

// legacyDeckID owns every item written before decks existed.
const legacyDeckID = "multiplication"

// State is the complete in-memory learning state.
type State struct {
	Items    []models.Item
	Session  models.SessionData
	Settings models.Settings
}

// DefaultSettings returns settings for a first run.
func DefaultSettings() models.Settings {
	return models.Settings{
		WarmupTarget:        grading.DefaultWarmupTarget,
		SoundEnabled:        true,
		ShowUpcomingReviews: true,
		EnabledDecks:        []string{legacyDeckID},
	}
}

// DefaultSession returns an empty session starting at now.
func DefaultSession(now time.Time) models.SessionData {
	return models.SessionData{
		Responses:        []models.ResponseRecord{},
		SpeedStats:       map[string]models.SpeedStats{},
		LastReviewDate:   now,
		SessionStartTime: now,
	}
}
