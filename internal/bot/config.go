package bot

import (
	"time"

	"github.com/example/drillcards/internal/config"
	"github.com/example/drillcards/internal/scheduler"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	Token string
	// Only this chat may drive the bot; reminders are sent here
	OwnerChatID int64
	// Reminder schedule; a zero interval disables reminders
	Reminders scheduler.ReminderConfig
	// Long-polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Reminders: scheduler.ReminderConfig{
			Interval:  time.Hour,
			StartHour: config.DefaultNotificationStartHour,
			EndHour:   config.DefaultNotificationEndHour,
		},
		UpdateTimeout: 60,
	}
}

// ConfigFrom builds the bot configuration from process configuration
func ConfigFrom(cfg *config.Config) *BotConfig {
	c := DefaultConfig()
	c.Token = cfg.TelegramToken
	c.OwnerChatID = cfg.OwnerChatID
	c.Reminders = scheduler.ReminderConfig{
		Interval:  cfg.ReminderInterval,
		StartHour: cfg.NotificationStartHour,
		EndHour:   cfg.NotificationEndHour,
	}
	return c
}
