package scheduler

import (
	"fmt"
	"time"

	"github.com/example/drillcards/internal/logger"
	"github.com/go-co-op/gocron"
)

// Notifier delivers a reminder that count items are due.
type Notifier interface {
	SendReminder(count int) error
}

// DueCounter reports how many enabled items are due at now.
type DueCounter interface {
	DueCount(now time.Time) int
}

// ReminderConfig controls when reminders may be sent.
type ReminderConfig struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
}

// Scheduler runs the periodic due-item reminder.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	pool      DueCounter
	cfg       ReminderConfig
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(notifier Notifier, pool DueCounter, cfg ReminderConfig, log *logger.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		pool:      pool,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Start schedules the reminder check and runs it asynchronously.
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("reminder scheduler started", "interval", s.cfg.Interval)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// inNotificationHours reports whether hour lies in the inclusive window.
// A window whose start is after its end wraps past midnight.
func (s *Scheduler) inNotificationHours(hour int) bool {
	if s.cfg.StartHour <= s.cfg.EndHour {
		return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
	}
	return hour >= s.cfg.StartHour || hour <= s.cfg.EndHour
}

func (s *Scheduler) checkAndSendReminders() {
	now := s.now()
	if !s.inNotificationHours(now.Hour()) {
		s.log.Debug("outside notification hours, skipping reminder",
			"hour", now.Hour(), "start", s.cfg.StartHour, "end", s.cfg.EndHour)
		return
	}
	if err := s.RunManualCheck(); err != nil {
		s.log.Error("failed to send reminder", "error", err)
	}
}

// RunManualCheck sends a reminder right away if anything is due,
// ignoring notification hours.
func (s *Scheduler) RunManualCheck() error {
	count := s.pool.DueCount(s.now())
	if count == 0 {
		return nil
	}
	return s.notifier.SendReminder(count)
}
