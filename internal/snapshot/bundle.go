package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/drillcards/pkg/models"
)

// BundleVersion tags export files.
const BundleVersion = "1.0.0"

// Bundle is the export file layout.
type Bundle struct {
	Version    string             `json:"version"`
	ExportDate time.Time          `json:"exportDate"`
	Items      []models.Item      `json:"items"`
	Session    models.SessionData `json:"session"`
	Settings   models.Settings    `json:"settings"`
}

// Export serialises state as an indented bundle.
func Export(state State, now time.Time) ([]byte, error) {
	b := Bundle{
		Version:    BundleVersion,
		ExportDate: now,
		Items:      state.Items,
		Session:    state.Session,
		Settings:   state.Settings,
	}
	if b.Items == nil {
		b.Items = []models.Item{}
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling export bundle: %w", err)
	}
	return data, nil
}

// Import validates a bundle and returns the state it carries. Older bundles
// using "cards" and "sessionData" are accepted and upcast. On error nothing
// in the returned State is meaningful.
func Import(raw []byte, now time.Time) (State, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return State{}, malformed(err, "bundle must be a JSON object")
	}

	for _, key := range []string{"version", "exportDate"} {
		var s string
		if err := json.Unmarshal(obj[key], &s); err != nil || !present(obj, key) {
			return State{}, malformed(nil, "%s must be a string", key)
		}
	}

	rawItems, ok := obj["items"]
	if !ok {
		rawItems, ok = obj["cards"]
	}
	if !ok || !isArray(rawItems) {
		return State{}, malformed(nil, "items must be an array")
	}
	items, _, err := NormalizeItems(rawItems)
	if err != nil {
		return State{}, err
	}
	if len(items) == 0 {
		return State{}, malformed(nil, "items must not be empty")
	}

	rawSession, ok := obj["session"]
	if !ok {
		rawSession, ok = obj["sessionData"]
	}
	if !ok || !isObject(rawSession) {
		return State{}, malformed(nil, "session must be an object")
	}
	var sessionObj map[string]json.RawMessage
	if err := json.Unmarshal(rawSession, &sessionObj); err != nil {
		return State{}, malformed(err, "session")
	}
	if !isArray(sessionObj["responses"]) {
		return State{}, malformed(nil, "session responses must be an array")
	}
	if !isObject(sessionObj["speedStats"]) {
		return State{}, malformed(nil, "session speedStats must be an object")
	}
	if !present(sessionObj, "lastReviewDate") {
		return State{}, malformed(nil, "session lastReviewDate is required")
	}
	session, _, err := normalizeSessionObject(sessionObj, now)
	if err != nil {
		return State{}, err
	}

	rawSettings := obj["settings"]
	if !isObject(rawSettings) {
		return State{}, malformed(nil, "settings must be an object")
	}
	settings, _, err := NormalizeSettings(rawSettings)
	if err != nil {
		return State{}, err
	}

	return State{Items: items, Session: session, Settings: settings}, nil
}
