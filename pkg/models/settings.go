package models

// Settings are the user's application preferences.
type Settings struct {
	WarmupTarget        int      `json:"warmupTarget"`
	SoundEnabled        bool     `json:"soundEnabled"`
	ShowUpcomingReviews bool     `json:"showUpcomingReviews"`
	EnabledDecks        []string `json:"enabledDecks"`
}

// DeckEnabled reports whether id is among the enabled decks.
func (s Settings) DeckEnabled(id string) bool {
	for _, d := range s.EnabledDecks {
		if d == id {
			return true
		}
	}
	return false
}
