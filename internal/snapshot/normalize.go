package snapshot

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/example/drillcards/pkg/models"
)

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func present(obj map[string]json.RawMessage, key string) bool {
	v, ok := obj[key]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// NormalizeItems decodes an items document, upcasting pre-deck items
// ({id, multiplicand, multiplier, fsrsCard}) to multiplication items.
// migrated reports whether anything was rewritten.
func NormalizeItems(raw []byte) (items []models.Item, migrated bool, err error) {
	var objs []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, false, malformed(err, "items must be an array of objects")
	}
	return normalizeItemObjects(objs)
}

func normalizeItemObjects(objs []map[string]json.RawMessage) ([]models.Item, bool, error) {
	items := make([]models.Item, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	migrated := false
	for i, obj := range objs {
		item, legacy, err := normalizeItem(obj)
		if err != nil {
			return nil, false, malformed(err, "item %d", i)
		}
		if seen[item.ID] {
			return nil, false, malformed(nil, "duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
		migrated = migrated || legacy
		items = append(items, item)
	}
	return items, migrated, nil
}

func normalizeItem(obj map[string]json.RawMessage) (models.Item, bool, error) {
	var item models.Item
	legacy := false

	if err := json.Unmarshal(obj["id"], &item.ID); err != nil || item.ID == "" {
		return item, false, malformed(err, "missing id")
	}

	memory, ok := obj["memoryState"]
	if !present(obj, "memoryState") {
		memory, ok = obj["fsrsCard"]
		legacy = true
	}
	if !ok || !isObject(memory) {
		return item, false, malformed(nil, "item %s has no memory state", item.ID)
	}
	if err := json.Unmarshal(memory, &item.MemoryState); err != nil {
		return item, false, malformed(err, "item %s memory state", item.ID)
	}
	if item.MemoryState.Due.IsZero() {
		return item, false, malformed(nil, "item %s memory state has no due date", item.ID)
	}

	switch {
	case present(obj, "deckId") && present(obj, "content"):
		if err := json.Unmarshal(obj["deckId"], &item.DeckID); err != nil || item.DeckID == "" {
			return item, false, malformed(err, "item %s deckId", item.ID)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, obj["content"]); err != nil {
			return item, false, malformed(err, "item %s content", item.ID)
		}
		item.Content = buf.Bytes()
	case present(obj, "multiplicand") && present(obj, "multiplier"):
		var content struct {
			Multiplicand int `json:"multiplicand"`
			Multiplier   int `json:"multiplier"`
		}
		if err := json.Unmarshal(obj["multiplicand"], &content.Multiplicand); err != nil {
			return item, false, malformed(err, "item %s multiplicand", item.ID)
		}
		if err := json.Unmarshal(obj["multiplier"], &content.Multiplier); err != nil {
			return item, false, malformed(err, "item %s multiplier", item.ID)
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return item, false, err
		}
		item.DeckID = legacyDeckID
		item.Content = raw
		legacy = true
	default:
		return item, false, malformed(nil, "item %s has neither deckId/content nor multiplicand/multiplier", item.ID)
	}

	return item, legacy, nil
}

// wireRecord accepts both current and legacy response record keys.
type wireRecord struct {
	ItemID         string        `json:"itemId"`
	CardID         string        `json:"cardId"`
	Answer         models.Answer `json:"answer"`
	Correct        bool          `json:"correct"`
	ResponseTimeMs *float64      `json:"responseTimeMs"`
	ResponseTime   *float64      `json:"responseTime"`
	Timestamp      time.Time     `json:"timestamp"`
}

func (w wireRecord) record() (models.ResponseRecord, bool) {
	r := models.ResponseRecord{
		ItemID:    w.ItemID,
		Answer:    w.Answer,
		Correct:   w.Correct,
		Timestamp: w.Timestamp,
	}
	legacy := false
	if r.ItemID == "" && w.CardID != "" {
		r.ItemID = w.CardID
		legacy = true
	}
	switch {
	case w.ResponseTimeMs != nil:
		r.ResponseTimeMs = *w.ResponseTimeMs
	case w.ResponseTime != nil:
		r.ResponseTimeMs = *w.ResponseTime
		legacy = true
	}
	return r, legacy
}

// wireSpeedStats accepts both current and legacy speed-statistics keys.
type wireSpeedStats struct {
	Samples     []float64          `json:"samples"`
	Responses   []float64          `json:"responses"`
	Percentiles models.Percentiles `json:"percentiles"`
	WarmedUp    *bool              `json:"warmedUp"`
	IsWarmedUp  *bool              `json:"isWarmedUp"`
}

func (w wireSpeedStats) stats() (models.SpeedStats, bool) {
	s := models.SpeedStats{
		Samples:     w.Samples,
		Percentiles: w.Percentiles,
	}
	legacy := false
	if s.Samples == nil && w.Responses != nil {
		s.Samples = w.Responses
		legacy = true
	}
	if s.Samples == nil {
		s.Samples = []float64{}
	}
	switch {
	case w.WarmedUp != nil:
		s.WarmedUp = *w.WarmedUp
	case w.IsWarmedUp != nil:
		s.WarmedUp = *w.IsWarmedUp
		legacy = true
	}
	return s, legacy
}

// NormalizeSession decodes a session document. A single flat speed-stats
// object (detected by a top-level "percentiles" key) is moved under the
// multiplication deck; legacy record and stats keys are renamed; missing
// session timing fields are filled in.
func NormalizeSession(raw []byte, now time.Time) (models.SessionData, bool, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return models.SessionData{}, false, malformed(err, "session must be an object")
	}
	return normalizeSessionObject(obj, now)
}

func normalizeSessionObject(obj map[string]json.RawMessage, now time.Time) (models.SessionData, bool, error) {
	data := DefaultSession(now)
	migrated := false

	if present(obj, "responses") {
		var records []wireRecord
		if err := json.Unmarshal(obj["responses"], &records); err != nil {
			return data, false, malformed(err, "session responses")
		}
		data.Responses = make([]models.ResponseRecord, 0, len(records))
		for _, w := range records {
			r, legacy := w.record()
			migrated = migrated || legacy
			data.Responses = append(data.Responses, r)
		}
	}

	if present(obj, "speedStats") {
		var stats map[string]json.RawMessage
		if err := json.Unmarshal(obj["speedStats"], &stats); err != nil {
			return data, false, malformed(err, "session speedStats")
		}
		if _, flat := stats["percentiles"]; flat {
			var w wireSpeedStats
			if err := json.Unmarshal(obj["speedStats"], &w); err != nil {
				return data, false, malformed(err, "session speedStats")
			}
			s, _ := w.stats()
			data.SpeedStats = map[string]models.SpeedStats{legacyDeckID: s}
			migrated = true
		} else {
			for deckID, rawStats := range stats {
				var w wireSpeedStats
				if err := json.Unmarshal(rawStats, &w); err != nil {
					return data, false, malformed(err, "speed stats for deck %s", deckID)
				}
				s, legacy := w.stats()
				migrated = migrated || legacy
				data.SpeedStats[deckID] = s
			}
		}
	} else {
		migrated = true
	}

	if present(obj, "lastReviewDate") {
		if err := json.Unmarshal(obj["lastReviewDate"], &data.LastReviewDate); err != nil {
			return data, false, malformed(err, "session lastReviewDate")
		}
	} else {
		migrated = true
	}
	if present(obj, "sessionStartTime") {
		if err := json.Unmarshal(obj["sessionStartTime"], &data.SessionStartTime); err != nil {
			return data, false, malformed(err, "session sessionStartTime")
		}
	} else {
		data.SessionStartTime = data.LastReviewDate
		migrated = true
	}
	if present(obj, "totalSessionTime") {
		var total float64
		if err := json.Unmarshal(obj["totalSessionTime"], &total); err != nil {
			return data, false, malformed(err, "session totalSessionTime")
		}
		data.TotalSessionTime = int64(total)
	} else {
		migrated = true
	}

	return data, migrated, nil
}

// NormalizeSettings decodes a settings document over the defaults. Settings
// saved before decks existed get the multiplication deck enabled.
func NormalizeSettings(raw []byte) (models.Settings, bool, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return models.Settings{}, false, malformed(err, "settings must be an object")
	}
	return normalizeSettingsObject(raw, obj)
}

func normalizeSettingsObject(raw []byte, obj map[string]json.RawMessage) (models.Settings, bool, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return models.Settings{}, false, malformed(err, "settings")
	}
	migrated := false
	if !present(obj, "enabledDecks") {
		settings.EnabledDecks = []string{legacyDeckID}
		migrated = true
	}
	if settings.WarmupTarget < 1 {
		settings.WarmupTarget = DefaultSettings().WarmupTarget
		migrated = true
	}
	return settings, migrated, nil
}
