package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "DB_TYPE", "DATABASE_URL", "DATA_DIR", "OWNER_CHAT_ID",
		"REMINDER_INTERVAL", "NOTIFICATION_START_HOUR", "NOTIFICATION_END_HOUR",
		"FSRS_REQUEST_RETENTION", "FSRS_MAXIMUM_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Driver() != "sqlite3" {
		t.Errorf("Driver = %q, want sqlite3", cfg.Driver())
	}
	if want := filepath.Join("data", "drillcards.db"); cfg.DSN() != want {
		t.Errorf("DSN = %q, want %q", cfg.DSN(), want)
	}
	if cfg.ReminderInterval != time.Hour {
		t.Errorf("ReminderInterval = %v, want 1h", cfg.ReminderInterval)
	}
	if cfg.RequestRetention != 0.9 {
		t.Errorf("RequestRetention = %v, want 0.9", cfg.RequestRetention)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/drill")
	t.Setenv("OWNER_CHAT_ID", "12345")
	t.Setenv("REMINDER_INTERVAL", "30m")
	t.Setenv("NOTIFICATION_START_HOUR", "6")
	t.Setenv("NOTIFICATION_END_HOUR", "99") // out of range, ignored
	t.Setenv("FSRS_REQUEST_RETENTION", "0.85")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Driver() != "postgres" || cfg.DSN() != "postgres://localhost/drill" {
		t.Errorf("driver/dsn = %q/%q", cfg.Driver(), cfg.DSN())
	}
	if cfg.OwnerChatID != 12345 {
		t.Errorf("OwnerChatID = %d", cfg.OwnerChatID)
	}
	if cfg.ReminderInterval != 30*time.Minute {
		t.Errorf("ReminderInterval = %v", cfg.ReminderInterval)
	}
	if cfg.NotificationStartHour != 6 || cfg.NotificationEndHour != DefaultNotificationEndHour {
		t.Errorf("hours = %d-%d", cfg.NotificationStartHour, cfg.NotificationEndHour)
	}
	if cfg.RequestRetention != 0.85 {
		t.Errorf("RequestRetention = %v", cfg.RequestRetention)
	}
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DB_TYPE", "mysql"},
		{"OWNER_CHAT_ID", "abc"},
		{"REMINDER_INTERVAL", "-5m"},
		{"FSRS_REQUEST_RETENTION", "1.5"},
		{"FSRS_MAXIMUM_INTERVAL", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("FromEnv accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
