// Package session owns the live learning state: the session window, the
// answer pipeline and deck toggling.
package session

import (
	"time"

	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/pkg/models"
)

// SessionGap is the idle time after which the next review opens a new session.
const SessionGap = 4 * time.Hour

// NewSessionData returns an empty session starting at now.
func NewSessionData(now time.Time) models.SessionData {
	return snapshot.DefaultSession(now)
}

// BeginIfStale starts a new session when more than SessionGap passed since
// the last review. Responses and speed statistics are lifetime history and
// carry over. The input is not modified.
func BeginIfStale(data models.SessionData, now time.Time) (models.SessionData, bool) {
	if now.Sub(data.LastReviewDate) <= SessionGap {
		return data, false
	}
	next := data.Clone()
	next.SessionStartTime = now
	next.TotalSessionTime = 0
	return next, true
}
