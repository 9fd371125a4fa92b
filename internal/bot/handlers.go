package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/scheduler"
	"github.com/example/drillcards/internal/session"
	"github.com/example/drillcards/internal/snapshot"
	"github.com/example/drillcards/pkg/models"
)

// Constants for callback data
const (
	callbackNext     = "next"
	callbackStats    = "stats"
	callbackUpcoming = "upcoming"
	callbackDecks    = "decks"
	callbackToggle   = "toggle_"
)

const helpText = `Available commands:
/next - Show the next question
/stats - Pool statistics and progress
/upcoming [days] - Reviews due in the coming days
/decks - List decks and toggle them
/enable <deck> - Enable a deck
/disable <deck> - Disable a deck
/export - Download a backup of your progress
/stop - End the drill and show a summary

Reply to a question with your answer.`

// MainMenuButtons returns the buttons of the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "▶️ Next", CallbackData: callbackNext}},
		{{Text: "📊 Stats", CallbackData: callbackStats}, {Text: "📅 Upcoming", CallbackData: callbackUpcoming}},
		{{Text: "🗂 Decks", CallbackData: callbackDecks}},
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.handleStart(chatID)
	case "help":
		return b.sendText(chatID, helpText)
	case "next":
		return b.handleNext(chatID)
	case "stats":
		return b.handleStats(chatID)
	case "upcoming":
		return b.handleUpcoming(chatID, args)
	case "decks":
		return b.handleDecks(chatID)
	case "enable":
		return b.handleToggleDeck(ctx, chatID, args, true)
	case "disable":
		return b.handleToggleDeck(ctx, chatID, args, false)
	case "export":
		return b.handleExport(chatID)
	case "stop":
		return b.handleStop(chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
		msg.ReplyMarkup = createKeyboard(MainMenuButtons())
		return b.sendMessage(msg)
	}
}

// HandleCallback handles presses on inline buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	switch {
	case callback.Data == callbackNext:
		return b.handleNext(chatID)
	case callback.Data == callbackStats:
		return b.handleStats(chatID)
	case callback.Data == callbackUpcoming:
		return b.handleUpcoming(chatID, "")
	case callback.Data == callbackDecks:
		return b.handleDecks(chatID)
	case strings.HasPrefix(callback.Data, callbackToggle):
		deckID := strings.TrimPrefix(callback.Data, callbackToggle)
		enabled := !b.reviewer.Snapshot().Settings.DeckEnabled(deckID)
		return b.handleToggleDeck(ctx, chatID, deckID, enabled)
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}
}

func (b *Bot) handleStart(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Welcome to drillcards! 🎓\n\n"+helpText)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) setPending(p *pendingQuestion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = p
}

func (b *Bot) getPending() *pendingQuestion {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return nil
	}
	p := *b.pending
	return &p
}

// handleNext sends the next question and starts its timer
func (b *Bot) handleNext(chatID int64) error {
	q, err := b.reviewer.Next(b.now())
	if err != nil {
		b.setPending(nil)
		return b.sendText(chatID, fmt.Sprintf("⚠️ Could not pick a question: %v", err))
	}
	if q == nil {
		b.setPending(nil)
		return b.sendText(chatID, "Nothing to review. Enable a deck with /decks.")
	}
	if err := b.sendText(chatID, formatQuestion(q)); err != nil {
		return err
	}
	b.setPending(&pendingQuestion{
		ItemID:    q.Item.ID,
		Prompt:    q.Prompt,
		InputType: q.InputType,
		SentAt:    b.now(),
	})
	return nil
}

// handleAnswer treats a plain message as the reply to the pending question
func (b *Bot) handleAnswer(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	p := b.getPending()
	if p == nil {
		return b.sendText(chatID, "Send /next to get a question.")
	}
	text := message.Text

	if p.Correcting {
		ok, err := b.reviewer.CheckCorrection(p.ItemID, text)
		if err != nil {
			b.setPending(nil)
			return b.sendText(chatID, fmt.Sprintf("⚠️ %v", err))
		}
		if !ok {
			return b.sendText(chatID, fmt.Sprintf("Not quite. Type %s to continue.", p.Answer))
		}
		return b.handleNext(chatID)
	}

	if err := deck.ValidateInput(p.InputType, text); err != nil {
		return b.sendText(chatID, inputHint(p.InputType))
	}

	now := b.now()
	fb, err := b.reviewer.Submit(ctx, p.ItemID, text, now.Sub(p.SentAt), now)
	if err != nil {
		b.setPending(nil)
		return b.sendText(chatID, fmt.Sprintf("⚠️ Could not grade that answer: %v", err))
	}
	if err := b.sendText(chatID, formatFeedback(fb, now)); err != nil {
		return err
	}
	if !fb.Correct {
		p.Correcting = true
		p.Answer = fb.CanonicalAnswer
		b.setPending(p)
		return nil
	}
	return b.handleNext(chatID)
}

func (b *Bot) handleStats(chatID int64) error {
	stats := b.reviewer.Stats(b.now())
	return b.sendText(chatID, formatStats(stats, b.reviewer.Summary()))
}

func (b *Bot) handleUpcoming(chatID int64, args string) error {
	days := scheduler.DefaultHorizonDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > 90 {
			return b.sendText(chatID, "Usage: /upcoming [days], with days between 1 and 90.")
		}
		days = n
	}
	return b.sendText(chatID, formatUpcoming(b.reviewer.Upcoming(b.now(), days)))
}

func (b *Bot) handleDecks(chatID int64) error {
	settings := b.reviewer.Snapshot().Settings
	all := b.registry.All()

	var buttons [][]MenuButton
	for _, d := range all {
		label := "Enable " + d.Name()
		if settings.DeckEnabled(d.ID()) {
			label = "Disable " + d.Name()
		}
		buttons = append(buttons, []MenuButton{{Text: label, CallbackData: callbackToggle + d.ID()}})
	}
	msg := tgbotapi.NewMessage(chatID, formatDecks(all, settings))
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleToggleDeck(ctx context.Context, chatID int64, deckID string, enabled bool) error {
	if deckID == "" {
		return b.sendText(chatID, "Usage: /enable <deck> or /disable <deck>. See /decks for ids.")
	}
	err := b.reviewer.SetDeckEnabled(ctx, deckID, enabled, b.now())
	if errors.Is(err, deck.ErrUnknownDeck) {
		return b.sendText(chatID, fmt.Sprintf("Unknown deck %q. See /decks.", deckID))
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("⚠️ %v", err))
	}
	// a question from a disabled deck is dropped
	if p := b.getPending(); p != nil && !enabled {
		if item, ok := b.findItem(p.ItemID); ok && item.DeckID == deckID {
			b.setPending(nil)
		}
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return b.sendText(chatID, fmt.Sprintf("Deck %s %s.", deckID, state))
}

func (b *Bot) findItem(id string) (models.Item, bool) {
	for _, item := range b.reviewer.Snapshot().Items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Item{}, false
}

func (b *Bot) handleExport(chatID int64) error {
	now := b.now()
	data, err := snapshot.Export(b.reviewer.Snapshot(), now)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("drillcards-%s.json", now.Format("2006-01-02")),
		Bytes: data,
	})
	return b.sendMessage(doc)
}

func (b *Bot) handleStop(chatID int64) error {
	b.setPending(nil)
	msg := tgbotapi.NewMessage(chatID, formatSummary(b.reviewer.Summary()))
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

func formatQuestion(q *session.Question) string {
	return fmt.Sprintf("%s\n\n%s = ?", q.DeckName, q.Prompt)
}

func inputHint(t deck.InputType) string {
	if t == deck.InputNumeric {
		return fmt.Sprintf("Please answer with a whole number of at most %d characters.", deck.MaxNumericInput)
	}
	return fmt.Sprintf("Please answer with at most %d characters.", deck.MaxTextInput)
}

func formatFeedback(fb session.Feedback, now time.Time) string {
	if fb.Correct {
		return fmt.Sprintf("✅ Correct! %s, %.1fs\nNext review %s",
			fb.Grade, fb.LatencyMs/1000, humanizeUntil(fb.NextDue.Sub(now)))
	}
	return fmt.Sprintf("❌ %q is wrong. The answer is %s.\nType the correct answer to continue.",
		strings.TrimSpace(fb.UserAnswer), fb.AnswerDisplay)
}

// humanizeUntil renders a positive duration coarsely
func humanizeUntil(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("in %dd", int(d/(24*time.Hour)))
	}
}

func formatStats(stats scheduler.Stats, summary session.Summary) string {
	var sb strings.Builder
	sb.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&sb, "Items: %d (due now: %d)\n", stats.Total, stats.Due)
	fmt.Fprintf(&sb, "New: %d, Learning: %d, Review: %d, Relearning: %d\n",
		stats.New, stats.Learning, stats.Review, stats.Relearning)
	fmt.Fprintf(&sb, "Average elapsed days: %.1f\n\n", stats.AverageElapsedDays)
	sb.WriteString(formatSummary(summary))
	return sb.String()
}

func formatSummary(s session.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Answers: %d, accuracy %.0f%% (last %d: %.0f%%)\n",
		s.TotalResponses, s.Accuracy*100, session.RecentWindow, s.RecentAccuracy*100)
	if s.AverageCorrectMs > 0 {
		fmt.Fprintf(&sb, "Average correct answer: %.1fs\n", s.AverageCorrectMs/1000)
	}
	fmt.Fprintf(&sb, "This session: %s\n", s.SessionTime.Round(time.Second))
	for _, d := range s.Decks {
		if d.WarmedUp {
			fmt.Fprintf(&sb, "%s: median %.1fs\n", d.DeckID, d.Percentiles.P50/1000)
		} else {
			fmt.Fprintf(&sb, "%s: warming up %d/%d\n", d.DeckID, d.Samples, d.Target)
		}
	}
	return sb.String()
}

func formatUpcoming(counts []int) string {
	var sb strings.Builder
	sb.WriteString("📅 Upcoming reviews\n")
	for i, n := range counts {
		switch i {
		case 0:
			fmt.Fprintf(&sb, "Today: %d\n", n)
		case 1:
			fmt.Fprintf(&sb, "Tomorrow: %d\n", n)
		default:
			fmt.Fprintf(&sb, "In %d days: %d\n", i, n)
		}
	}
	return sb.String()
}

func formatDecks(all []deck.Deck, settings models.Settings) string {
	var sb strings.Builder
	sb.WriteString("🗂 Decks\n")
	for _, d := range all {
		mark := "⬜"
		if settings.DeckEnabled(d.ID()) {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s (%s): %s\n", mark, d.Name(), d.ID(), d.Description())
	}
	return sb.String()
}

func reminderText(count int) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	return fmt.Sprintf("⏰ You have %d %s due for review.", count, noun)
}
