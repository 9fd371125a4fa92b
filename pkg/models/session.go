package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Answer is the raw answer a user submitted. Older snapshots stored
// numeric answers as JSON numbers, so both forms are accepted.
type Answer string

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Answer(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ResponseRecord is one entry of the append-only response log.
type ResponseRecord struct {
	ItemID         string    `json:"itemId"`
	Answer         Answer    `json:"answer"`
	Correct        bool      `json:"correct"`
	ResponseTimeMs float64   `json:"responseTimeMs"`
	Timestamp      time.Time `json:"timestamp"`
}

// Percentiles holds latency thresholds in milliseconds.
type Percentiles struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// SpeedStats holds the latency history of one deck.
type SpeedStats struct {
	Samples     []float64   `json:"samples"`
	Percentiles Percentiles `json:"percentiles"`
	WarmedUp    bool        `json:"warmedUp"`
}

// SessionData is lifetime learning history plus the current session window.
type SessionData struct {
	Responses        []ResponseRecord      `json:"responses"`
	SpeedStats       map[string]SpeedStats `json:"speedStats"`
	LastReviewDate   time.Time             `json:"lastReviewDate"`
	SessionStartTime time.Time             `json:"sessionStartTime"`
	TotalSessionTime int64                 `json:"totalSessionTime"` // milliseconds
}

// Clone copies the slice and map headers so the result can be extended
// without aliasing the receiver.
func (s SessionData) Clone() SessionData {
	out := s
	out.Responses = make([]ResponseRecord, len(s.Responses))
	copy(out.Responses, s.Responses)
	out.SpeedStats = make(map[string]SpeedStats, len(s.SpeedStats))
	for k, v := range s.SpeedStats {
		out.SpeedStats[k] = v
	}
	return out
}
