package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/logger"
	"github.com/example/drillcards/internal/scheduler"
	"github.com/example/drillcards/internal/session"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of tgbotapi.BotAPI the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// pendingQuestion is the question waiting for the owner's reply
type pendingQuestion struct {
	ItemID     string
	Prompt     string
	InputType  deck.InputType
	SentAt     time.Time
	Correcting bool // a wrong answer must be retyped correctly
	Answer     string
}

// Bot represents the Telegram bot application
type Bot struct {
	api       sender
	cfg       *BotConfig
	reviewer  *session.Reviewer
	registry  *deck.Registry
	scheduler *scheduler.Scheduler
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending *pendingQuestion
}

// New creates a new bot instance. The Telegram connection is made in Start.
func New(cfg *BotConfig, reviewer *session.Reviewer, registry *deck.Registry, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if cfg.OwnerChatID == 0 {
		return nil, errors.New("OWNER_CHAT_ID environment variable is not set")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Bot{
		cfg:      cfg,
		reviewer: reviewer,
		registry: registry,
		log:      log.With("component", "bot"),
		now:      time.Now,
	}, nil
}

// Start connects to Telegram and handles updates until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.cfg.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.api = botAPI
	b.log.Info("authorized on account", "username", botAPI.Self.UserName)

	if b.cfg.Reminders.Interval > 0 {
		b.scheduler = scheduler.New(b, b.reviewer, b.cfg.Reminders, b.log)
		if err := b.scheduler.Start(); err != nil {
			return err
		}
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.Stop()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
		b.scheduler = nil
	}
	b.log.Info("bot stopped")
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(count int) error {
	msg := tgbotapi.NewMessage(b.cfg.OwnerChatID, reminderText(count))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "▶️ Start review", CallbackData: callbackNext}}})
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.log.Info("sent reminder", "due", count)
	return nil
}

// isOwner checks if a chat belongs to the owner
func (b *Bot) isOwner(chatID int64) bool {
	return chatID == b.cfg.OwnerChatID
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		if update.Message.Chat == nil || !b.isOwner(update.Message.Chat.ID) {
			b.log.Warn("ignoring message from foreign chat")
			return
		}
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.handleAnswer(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || !b.isOwner(cb.Message.Chat.ID) {
			b.log.Warn("ignoring callback from foreign chat")
			return
		}
		err = b.HandleCallback(ctx, cb)
	}
	if err != nil {
		b.log.Error("failed to handle update", "update", update.UpdateID, "error", err)
	}
}

func (b *Bot) sendMessage(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}
