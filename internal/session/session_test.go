package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/deck/decks"
	"github.com/example/drillcards/internal/grading"
	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/internal/spaced_repetition"
	"github.com/example/drillcards/pkg/models"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type memStore struct {
	items    int
	sessions int
	settings int
	err      error
}

func (m *memStore) SaveItems(context.Context, []models.Item) error {
	m.items++
	return m.err
}

func (m *memStore) SaveSession(context.Context, models.SessionData) error {
	m.sessions++
	return m.err
}

func (m *memStore) SaveSettings(context.Context, models.Settings) error {
	m.settings++
	return m.err
}

func newTestReviewer(t *testing.T, store Store) *Reviewer {
	t.Helper()
	reg := deck.NewRegistry(logger.NewNop())
	decks.RegisterAll(reg)
	items, err := decks.Multiplication{}.GenerateItems(t0)
	if err != nil {
		t.Fatal(err)
	}
	state := snapshot.State{
		Items:    items,
		Session:  NewSessionData(t0),
		Settings: snapshot.DefaultSettings(),
	}
	return NewReviewer(state, reg, spaced_repetition.NewEngine(0, 0), store, logger.NewNop())
}

func findItem(items []models.Item, id string) (models.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}

func TestBeginIfStale(t *testing.T) {
	data := NewSessionData(t0)
	data.TotalSessionTime = 5000
	data.Responses = append(data.Responses, models.ResponseRecord{ItemID: "x"})

	tests := []struct {
		name    string
		gap     time.Duration
		started bool
	}{
		{"short gap", 3 * time.Hour, false},
		{"exactly the gap", SessionGap, false},
		{"long gap", SessionGap + time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := t0.Add(tt.gap)
			got, started := BeginIfStale(data, now)
			if started != tt.started {
				t.Fatalf("started = %v, want %v", started, tt.started)
			}
			if !started {
				if !got.SessionStartTime.Equal(t0) || got.TotalSessionTime != 5000 {
					t.Errorf("session changed without a new start: %+v", got)
				}
				return
			}
			if !got.SessionStartTime.Equal(now) || got.TotalSessionTime != 0 {
				t.Errorf("new session = start %v total %d", got.SessionStartTime, got.TotalSessionTime)
			}
			if len(got.Responses) != 1 {
				t.Errorf("responses must carry over, got %d", len(got.Responses))
			}
			if data.TotalSessionTime != 5000 {
				t.Error("input session was modified")
			}
		})
	}
}

func TestSubmitCorrectAnswer(t *testing.T) {
	store := &memStore{}
	r := newTestReviewer(t, store)
	id := decks.MultiplicationItemID(3, 7)
	before := r.Snapshot()

	fb, err := r.Submit(context.Background(), id, "21", 1500*time.Millisecond, t0)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !fb.Correct || fb.Grade != grading.Good || fb.LatencyMs != 1500 {
		t.Errorf("feedback = %+v", fb)
	}
	if !fb.SoundCue {
		t.Error("sound cue should be set for a correct answer with sound enabled")
	}

	after := r.Snapshot()
	item, _ := findItem(after.Items, id)
	if item.MemoryState.Reps != 1 || !item.MemoryState.Due.After(t0) {
		t.Errorf("memory state not advanced: %+v", item.MemoryState)
	}
	if !fb.NextDue.Equal(item.MemoryState.Due) {
		t.Errorf("feedback due %v != item due %v", fb.NextDue, item.MemoryState.Due)
	}
	if len(after.Session.Responses) != 1 || after.Session.Responses[0].Answer != "21" {
		t.Errorf("responses = %+v", after.Session.Responses)
	}
	stats := after.Session.SpeedStats[decks.MultiplicationID]
	if len(stats.Samples) != 1 || stats.Samples[0] != 1500 {
		t.Errorf("speed stats = %+v", stats)
	}
	if after.Session.TotalSessionTime != 1500 || !after.Session.LastReviewDate.Equal(t0) {
		t.Errorf("session = %+v", after.Session)
	}
	if store.items != 1 || store.sessions != 1 {
		t.Errorf("saves = %d items, %d sessions", store.items, store.sessions)
	}

	// the earlier snapshot is untouched
	old, _ := findItem(before.Items, id)
	if old.MemoryState.Reps != 0 || len(before.Session.Responses) != 0 {
		t.Error("submit modified a published snapshot")
	}
}

func TestSubmitWrongAnswerGradesAgain(t *testing.T) {
	r := newTestReviewer(t, nil)
	fb, err := r.Submit(context.Background(), decks.MultiplicationItemID(3, 7), "20", time.Second, t0)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.Correct || fb.Grade != grading.Again || fb.CanonicalAnswer != "21" || fb.SoundCue {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestSubmitUnknownDeckLeavesStateUnchanged(t *testing.T) {
	store := &memStore{}
	r := newTestReviewer(t, store)
	orphan := models.Item{ID: "orphan", DeckID: "removed", MemoryState: models.NewMemoryState(t0)}
	r.state.Items = append(models.CloneItems(r.state.Items), orphan)
	before := r.Snapshot()

	_, err := r.Submit(context.Background(), "orphan", "1", time.Second, t0)
	if !errors.Is(err, deck.ErrUnknownDeck) {
		t.Fatalf("err = %v, want ErrUnknownDeck", err)
	}
	after := r.Snapshot()
	if len(after.Session.Responses) != 0 || len(after.Session.SpeedStats) != 0 {
		t.Error("session changed after a failed submit")
	}
	if len(after.Items) != len(before.Items) || store.items != 0 || store.sessions != 0 {
		t.Error("items changed or saved after a failed submit")
	}
}

func TestSubmitUnknownItem(t *testing.T) {
	r := newTestReviewer(t, nil)
	if _, err := r.Submit(context.Background(), "nope", "1", time.Second, t0); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("err = %v, want ErrUnknownItem", err)
	}
}

func TestSubmitSurvivesStoreFailure(t *testing.T) {
	r := newTestReviewer(t, &memStore{err: errors.New("disk full")})
	if _, err := r.Submit(context.Background(), decks.MultiplicationItemID(2, 2), "4", time.Second, t0); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n := len(r.Snapshot().Session.Responses); n != 1 {
		t.Errorf("responses = %d, want 1", n)
	}
}

func TestNextOnlyFromEnabledDecks(t *testing.T) {
	r := newTestReviewer(t, nil)
	q, err := r.Next(t0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if q == nil || q.DeckID != decks.MultiplicationID || q.InputType != deck.InputNumeric {
		t.Fatalf("question = %+v", q)
	}

	if err := r.SetDeckEnabled(context.Background(), decks.MultiplicationID, false, t0); err != nil {
		t.Fatal(err)
	}
	q, err = r.Next(t0)
	if err != nil || q != nil {
		t.Errorf("Next with no enabled decks = %+v, %v", q, err)
	}
}

func TestReenableDeckPreservesMemoryState(t *testing.T) {
	ctx := context.Background()
	r := newTestReviewer(t, &memStore{})
	id := "katakana-ア"

	if err := r.SetDeckEnabled(ctx, decks.KatakanaID, true, t0); err != nil {
		t.Fatalf("enable: %v", err)
	}
	count := len(r.Snapshot().Items)
	if count != 784+46 {
		t.Fatalf("items = %d, want %d", count, 784+46)
	}
	if _, err := r.Submit(ctx, id, "a", time.Second, t0); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	reviewed, _ := findItem(r.Snapshot().Items, id)

	if err := r.SetDeckEnabled(ctx, decks.KatakanaID, false, t0); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if r.Snapshot().Settings.DeckEnabled(decks.KatakanaID) {
		t.Error("katakana still enabled")
	}
	if err := r.SetDeckEnabled(ctx, decks.KatakanaID, true, t0.Add(time.Hour)); err != nil {
		t.Fatalf("re-enable: %v", err)
	}

	after := r.Snapshot()
	if len(after.Items) != count {
		t.Errorf("items = %d after re-enable, want %d", len(after.Items), count)
	}
	got, _ := findItem(after.Items, id)
	if got.MemoryState.Reps != reviewed.MemoryState.Reps || !got.MemoryState.Due.Equal(reviewed.MemoryState.Due) {
		t.Errorf("memory state reset: got %+v, want %+v", got.MemoryState, reviewed.MemoryState)
	}
}

func TestEnableUnknownDeck(t *testing.T) {
	r := newTestReviewer(t, nil)
	err := r.SetDeckEnabled(context.Background(), "hiragana", true, t0)
	var unknown *deck.UnknownDeckError
	if !errors.As(err, &unknown) || unknown.DeckID != "hiragana" {
		t.Errorf("err = %v, want UnknownDeckError", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	r := newTestReviewer(t, nil)
	zero, ten, off := 0, 10, false
	if _, err := r.UpdateSettings(context.Background(), SettingsUpdate{WarmupTarget: &zero}); err == nil {
		t.Error("expected error for warm-up target 0")
	}
	got, err := r.UpdateSettings(context.Background(), SettingsUpdate{WarmupTarget: &ten, SoundEnabled: &off})
	if err != nil {
		t.Fatal(err)
	}
	if got.WarmupTarget != 10 || got.SoundEnabled || !got.ShowUpcomingReviews {
		t.Errorf("settings = %+v", got)
	}
}

func TestCheckCorrection(t *testing.T) {
	r := newTestReviewer(t, nil)
	id := decks.MultiplicationItemID(9, 99)
	ok, err := r.CheckCorrection(id, "891")
	if err != nil || !ok {
		t.Errorf("CheckCorrection(891) = %v, %v", ok, err)
	}
	if ok, _ := r.CheckCorrection(id, "890"); ok {
		t.Error("wrong correction accepted")
	}
	if len(r.Snapshot().Session.Responses) != 0 {
		t.Error("correction must not record a response")
	}
}

func TestSummarize(t *testing.T) {
	data := NewSessionData(t0)
	for i := 0; i < 30; i++ {
		// first 10 wrong, last 20 alternate
		correct := i >= 10 && i%2 == 0
		data.Responses = append(data.Responses, models.ResponseRecord{
			ItemID:         "x",
			Correct:        correct,
			ResponseTimeMs: 1000,
		})
	}
	data.SpeedStats["subtraction"] = models.SpeedStats{Samples: []float64{1, 2}}
	data.SpeedStats["katakana"] = models.SpeedStats{Samples: []float64{1}, WarmedUp: true}
	data.TotalSessionTime = 90000

	s := Summarize(data, 50)
	if s.TotalResponses != 30 || s.CorrectResponses != 10 {
		t.Errorf("counts = %d/%d", s.CorrectResponses, s.TotalResponses)
	}
	if s.Accuracy != 10.0/30.0 || s.RecentAccuracy != 0.5 {
		t.Errorf("accuracy = %v recent = %v", s.Accuracy, s.RecentAccuracy)
	}
	if s.AverageCorrectMs != 1000 || s.SessionTime != 90*time.Second {
		t.Errorf("average = %v session = %v", s.AverageCorrectMs, s.SessionTime)
	}
	if len(s.Decks) != 2 || s.Decks[0].DeckID != "katakana" || s.Decks[1].Samples != 2 {
		t.Errorf("decks = %+v", s.Decks)
	}

	empty := Summarize(NewSessionData(t0), 50)
	if empty.Accuracy != 0 || empty.RecentAccuracy != 0 || empty.AverageCorrectMs != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestUnregisteredDeckDoesNotBlockPool(t *testing.T) {
	r := newTestReviewer(t, nil)

	mult, ok := findItem(r.state.Items, decks.MultiplicationItemID(2, 2))
	if !ok {
		t.Fatal("multiplication item missing")
	}
	mult.MemoryState.State = models.StateReview
	mult.MemoryState.Due = t0.Add(-time.Hour)
	orphan := models.Item{
		ID:          "hira-a",
		DeckID:      "hiragana",
		Content:     []byte(`{"character":"あ"}`),
		MemoryState: models.NewMemoryState(t0.Add(-2 * time.Hour)),
	}
	later := models.Item{
		ID:          "hira-i",
		DeckID:      "hiragana",
		Content:     []byte(`{"character":"い"}`),
		MemoryState: models.MemoryState{State: models.StateReview, Due: t0.Add(time.Hour)},
	}

	settings := snapshot.DefaultSettings()
	settings.EnabledDecks = []string{decks.MultiplicationID, "hiragana"}
	r.state = snapshot.State{
		Items:    []models.Item{mult, orphan, later},
		Session:  NewSessionData(t0),
		Settings: settings,
	}

	q, err := r.Next(t0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if q == nil || q.Item.ID != mult.ID {
		t.Fatalf("question = %+v, want %s", q, mult.ID)
	}

	if stats := r.Stats(t0); stats.Total != 1 || stats.Due != 1 {
		t.Errorf("stats = %+v, want one due item", stats)
	}
	if got := r.DueCount(t0); got != 1 {
		t.Errorf("DueCount = %d, want 1", got)
	}
	if counts := r.Upcoming(t0, 3); len(counts) != 3 || counts[0] != 0 {
		t.Errorf("Upcoming = %v", counts)
	}
	if n := len(r.Snapshot().Items); n != 3 {
		t.Errorf("stored items = %d, want 3", n)
	}
}
