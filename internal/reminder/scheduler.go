package reminder

import (
	"context"
	"fmt"
	"time"

	"streakbot/internal/clock"
	"streakbot/internal/logger"
	"streakbot/internal/storage"
)

// Notifier delivers reminder messages to a chat topic and deletes them
// again. Implemented by the telegram layer.
type Notifier interface {
	SendReminder(chatID, topicID int64, text string) (messageID int, err error)
	DeleteMessage(chatID int64, messageID int) error
}

// Scheduler sweeps active challenges once a minute, sends reminders
// whose configured (hour, minute) matches the current target-zone
// minute, and skips challenges that already have a done check-in for
// the day. Sent reminders are deleted after the retention window on a
// best-effort basis.
type Scheduler struct {
	store     storage.Provider
	clock     *clock.Clock
	notifier  Notifier
	interval  time.Duration
	retention time.Duration

	// afterFunc schedules the deferred deletes; swapped in tests.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func New(store storage.Provider, clk *clock.Clock, notifier Notifier, interval, retention time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		clock:     clk,
		notifier:  notifier,
		interval:  interval,
		retention: retention,
		afterFunc: time.AfterFunc,
	}
}

// Run sweeps on a fixed ticker until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("reminder scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(s.clock.Now())
		}
	}
}

// Sweep runs one pass for the given instant. A failure on one challenge
// is logged and does not abort the sweep for the others.
func (s *Scheduler) Sweep(now time.Time) {
	hour, minute := s.clock.HourMinute(now)

	challenges, err := s.store.ListRemindable()
	if err != nil {
		logger.Error("reminder sweep failed to list challenges", "error", err)
		return
	}

	dayStart := s.clock.StartOfDay(now)
	for _, ch := range challenges {
		texts := ch.RemindersAt(hour, minute)
		if len(texts) == 0 {
			continue
		}

		done, err := s.store.HasDoneEventSince(ch.ID, dayStart)
		if err != nil {
			logger.Error("reminder sweep failed to check today's events", "challenge", ch.ID, "error", err)
			continue
		}
		if done {
			// Habit already recorded today.
			continue
		}

		for _, text := range texts {
			msgID, err := s.notifier.SendReminder(ch.ChatID, ch.TopicID, fmt.Sprintf("⏰ Reminder: %s\n\nCheck in: /done", text))
			if err != nil {
				logger.Error("reminder send failed", "challenge", ch.ID, "error", err)
				continue
			}

			chatID := ch.ChatID
			s.afterFunc(s.retention, func() {
				// A reminder outliving its window is cosmetic; failures
				// are swallowed.
				_ = s.notifier.DeleteMessage(chatID, msgID)
			})
		}
	}
}
