package bot

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/deck/decks"
	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/session"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/internal/spaced_repetition"
)

const owner int64 = 42

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeSender) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBot(t *testing.T) (*Bot, *fakeSender, *testClock) {
	t.Helper()
	reg := deck.NewRegistry(logger.NewNop())
	decks.RegisterAll(reg)
	items, err := decks.Multiplication{}.GenerateItems(t0)
	if err != nil {
		t.Fatal(err)
	}
	state := snapshot.State{Items: items, Session: session.NewSessionData(t0), Settings: snapshot.DefaultSettings()}
	reviewer := session.NewReviewer(state, reg, spaced_repetition.NewEngine(0, 0), nil, logger.NewNop())
	reviewer.SetRand(rand.New(rand.NewSource(1)))

	fs := &fakeSender{}
	clock := &testClock{now: t0}
	b := &Bot{
		api:      fs,
		cfg:      &BotConfig{OwnerChatID: owner},
		reviewer: reviewer,
		registry: reg,
		log:      logger.NewNop(),
		now:      clock.Now,
	}
	return b, fs, clock
}

func message(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

// correctAnswer returns the answer to the pending question
func correctAnswer(t *testing.T, b *Bot) string {
	t.Helper()
	p := b.getPending()
	if p == nil {
		t.Fatal("no pending question")
	}
	item, ok := b.findItem(p.ItemID)
	if !ok {
		t.Fatalf("pending item %s not found", p.ItemID)
	}
	d, err := b.registry.ResolveForItem(item)
	if err != nil {
		t.Fatal(err)
	}
	answer, err := d.CanonicalAnswerDisplay(item)
	if err != nil {
		t.Fatal(err)
	}
	return answer
}

func TestNextAndCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	b, fs, clock := newTestBot(t)

	b.handleUpdate(ctx, message(owner, "/next"))
	if !strings.HasSuffix(fs.lastText(), "= ?") {
		t.Fatalf("question = %q", fs.lastText())
	}
	first := b.getPending()

	clock.Advance(1500 * time.Millisecond)
	b.handleUpdate(ctx, message(owner, correctAnswer(t, b)))

	texts := fs.texts()
	if len(texts) != 3 || !strings.HasPrefix(texts[1], "✅ Correct!") {
		t.Fatalf("texts = %q", texts)
	}
	responses := b.reviewer.Snapshot().Session.Responses
	if len(responses) != 1 || responses[0].ResponseTimeMs != 1500 || !responses[0].Correct {
		t.Errorf("responses = %+v", responses)
	}
	if next := b.getPending(); next == nil || next.ItemID == first.ItemID {
		t.Errorf("expected a new pending question, got %+v", next)
	}
}

func TestWrongAnswerRequiresCorrection(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(t)

	b.handleUpdate(ctx, message(owner, "/next"))
	answer := correctAnswer(t, b)
	itemID := b.getPending().ItemID

	b.handleUpdate(ctx, message(owner, "0"))
	if !strings.HasPrefix(fs.lastText(), "❌") {
		t.Fatalf("feedback = %q", fs.lastText())
	}
	if p := b.getPending(); p == nil || !p.Correcting || p.ItemID != itemID {
		t.Fatalf("pending = %+v", p)
	}

	b.handleUpdate(ctx, message(owner, "1"))
	if !strings.HasPrefix(fs.lastText(), "Not quite") {
		t.Errorf("retry prompt = %q", fs.lastText())
	}

	b.handleUpdate(ctx, message(owner, answer))
	if p := b.getPending(); p == nil || p.Correcting {
		t.Errorf("pending after correction = %+v", p)
	}
	if n := len(b.reviewer.Snapshot().Session.Responses); n != 1 {
		t.Errorf("responses = %d, corrections must not be recorded", n)
	}
}

func TestInvalidInputIsNotGraded(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(t)

	b.handleUpdate(ctx, message(owner, "/next"))
	b.handleUpdate(ctx, message(owner, "abc"))
	if !strings.HasPrefix(fs.lastText(), "Please answer with a whole number") {
		t.Errorf("hint = %q", fs.lastText())
	}
	if n := len(b.reviewer.Snapshot().Session.Responses); n != 0 {
		t.Errorf("responses = %d", n)
	}
	if b.getPending() == nil {
		t.Error("question dropped after invalid input")
	}
}

func TestAnswerWithoutQuestion(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.handleUpdate(context.Background(), message(owner, "12"))
	if fs.lastText() != "Send /next to get a question." {
		t.Errorf("reply = %q", fs.lastText())
	}
}

func TestForeignChatIgnored(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.handleUpdate(context.Background(), message(7, "/next"))
	if len(fs.sent) != 0 {
		t.Errorf("sent %d messages to a foreign chat", len(fs.sent))
	}
}

func TestToggleDecks(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(t)

	b.handleUpdate(ctx, message(owner, "/enable katakana"))
	if fs.lastText() != "Deck katakana enabled." {
		t.Errorf("reply = %q", fs.lastText())
	}
	if !b.reviewer.Snapshot().Settings.DeckEnabled(decks.KatakanaID) {
		t.Error("katakana not enabled")
	}

	b.handleUpdate(ctx, message(owner, "/enable hiragana"))
	if !strings.HasPrefix(fs.lastText(), "Unknown deck") {
		t.Errorf("reply = %q", fs.lastText())
	}

	b.handleUpdate(ctx, message(owner, "/disable katakana"))
	b.handleUpdate(ctx, message(owner, "/next"))
	if b.getPending() == nil {
		t.Fatal("no question")
	}
	b.handleUpdate(ctx, message(owner, "/disable multiplication"))
	if b.getPending() != nil {
		t.Error("question from a disabled deck still pending")
	}
}

func TestCallbackNext(t *testing.T) {
	b, fs, _ := newTestBot(t)
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    callbackNext,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: owner}},
	}}
	b.handleUpdate(context.Background(), update)
	if fs.requests != 1 {
		t.Errorf("callback answered %d times", fs.requests)
	}
	if b.getPending() == nil {
		t.Error("no question after next button")
	}
}

func TestExportSendsDocument(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.handleUpdate(context.Background(), message(owner, "/export"))
	if len(fs.sent) != 1 {
		t.Fatalf("sent %d", len(fs.sent))
	}
	doc, ok := fs.sent[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("sent %T, want DocumentConfig", fs.sent[0])
	}
	file, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || file.Name != "drillcards-2025-06-15.json" {
		t.Fatalf("file = %+v", doc.File)
	}
	if _, err := snapshot.Import(file.Bytes, t0); err != nil {
		t.Errorf("exported bundle does not import: %v", err)
	}
}

func TestSendReminder(t *testing.T) {
	b, fs, _ := newTestBot(t)
	if err := b.SendReminder(3); err != nil {
		t.Fatal(err)
	}
	msg, ok := fs.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != owner || msg.Text != "⏰ You have 3 items due for review." {
		t.Errorf("reminder = %+v", fs.sent[0])
	}
}

func TestFormatting(t *testing.T) {
	if got := reminderText(1); got != "⏰ You have 1 item due for review." {
		t.Errorf("reminderText(1) = %q", got)
	}
	for d, want := range map[time.Duration]string{
		30 * time.Second: "now",
		10 * time.Minute: "in 10m",
		5 * time.Hour:    "in 5h",
		72 * time.Hour:   "in 3d",
	} {
		if got := humanizeUntil(d); got != want {
			t.Errorf("humanizeUntil(%v) = %q, want %q", d, got, want)
		}
	}
	want := "📅 Upcoming reviews\nToday: 4\nTomorrow: 0\nIn 2 days: 1\n"
	if got := formatUpcoming([]int{4, 0, 1}); got != want {
		t.Errorf("formatUpcoming = %q", got)
	}
}

func TestNewRequiresTokenAndOwner(t *testing.T) {
	if _, err := New(&BotConfig{OwnerChatID: owner}, nil, nil, nil); err == nil {
		t.Error("expected error without token")
	}
	if _, err := New(&BotConfig{Token: "x"}, nil, nil, nil); err == nil {
		t.Error("expected error without owner chat")
	}
}
