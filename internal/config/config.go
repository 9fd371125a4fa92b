package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default notification window for reminders
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Config holds process-level settings read from the environment.
// User preferences (warm-up target, enabled decks) live in models.Settings.
type Config struct {
	// Env selects the logger mode
	Env string
	// DBType is "sqlite" or "postgres"
	DBType string
	// DatabaseURL overrides the sqlite file path or supplies the postgres DSN
	DatabaseURL string
	// DataDir holds the sqlite database and default exports
	DataDir string

	TelegramToken string
	OwnerChatID   int64

	// Interval between due-item reminder checks
	ReminderInterval      time.Duration
	NotificationStartHour int
	NotificationEndHour   int

	// Memory-state engine tuning
	RequestRetention float64
	MaximumInterval  float64
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Env:                   "development",
		DBType:                "sqlite",
		DataDir:               "data",
		ReminderInterval:      time.Hour,
		NotificationStartHour: DefaultNotificationStartHour,
		NotificationEndHour:   DefaultNotificationEndHour,
		RequestRetention:      0.9,
		MaximumInterval:       36500,
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv applies environment overrides on top of DefaultConfig.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		v = strings.ToLower(v)
		if v != "sqlite" && v != "postgres" {
			return nil, fmt.Errorf("unsupported DB_TYPE %q", v)
		}
		cfg.DBType = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if v := os.Getenv("OWNER_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_CHAT_ID: %w", err)
		}
		cfg.OwnerChatID = id
	}
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_INTERVAL %q", v)
		}
		cfg.ReminderInterval = d
	}
	if h, ok := hourFromEnv("NOTIFICATION_START_HOUR"); ok {
		cfg.NotificationStartHour = h
	}
	if h, ok := hourFromEnv("NOTIFICATION_END_HOUR"); ok {
		cfg.NotificationEndHour = h
	}
	if v := os.Getenv("FSRS_REQUEST_RETENTION"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 || r >= 1 {
			return nil, fmt.Errorf("invalid FSRS_REQUEST_RETENTION %q", v)
		}
		cfg.RequestRetention = r
	}
	if v := os.Getenv("FSRS_MAXIMUM_INTERVAL"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || m < 1 {
			return nil, fmt.Errorf("invalid FSRS_MAXIMUM_INTERVAL %q", v)
		}
		cfg.MaximumInterval = m
	}

	return cfg, nil
}

// Driver returns the database/sql driver name for DBType.
func (c *Config) Driver() string {
	if c.DBType == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return filepath.Join(c.DataDir, "drillcards.db")
}

// hourFromEnv ignores values outside 0-23, as the reminder scheduler always has.
func hourFromEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
