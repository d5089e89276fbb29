package reminder

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"streakbot/internal/clock"
	"streakbot/internal/models"
	"streakbot/internal/storage"
	"streakbot/internal/storage/sqlite"
)

type fakeNotifier struct {
	sent     []string
	deleted  []int
	nextID   int
	failSend bool
}

func (f *fakeNotifier) SendReminder(chatID, topicID int64, text string) (int, error) {
	if f.failSend {
		return 0, fmt.Errorf("telegram unreachable")
	}
	f.nextID++
	f.sent = append(f.sent, fmt.Sprintf("%d/%d %s", chatID, topicID, text))
	return f.nextID, nil
}

func (f *fakeNotifier) DeleteMessage(chatID int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func newSchedulerHarness(t *testing.T, now time.Time) (*Scheduler, storage.Provider, *fakeNotifier, *clock.Clock) {
	t.Helper()

	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clk := clock.New(5).WithNow(func() time.Time { return now })
	notifier := &fakeNotifier{}
	sched := New(store, clk, notifier, time.Minute, time.Hour)

	// Deferred deletes fire synchronously so the test can observe them.
	sched.afterFunc = func(d time.Duration, f func()) *time.Timer {
		f()
		return nil
	}

	return sched, store, notifier, clk
}

func addChallenge(t *testing.T, store storage.Provider, clk *clock.Clock, topicID int64, reminders []models.Reminder) models.Challenge {
	t.Helper()
	now := clk.Now()
	ch := models.Challenge{
		ID:        uuid.NewString(),
		ChatID:    100,
		TopicID:   topicID,
		Title:     "Wake at 4",
		StartDate: now,
		Status:    models.ChallengeActive,
		Reminders: reminders,
		CreatedAt: now,
	}
	if err := store.AddChallenge(ch); err != nil {
		t.Fatalf("failed to add challenge: %v", err)
	}
	return ch
}

func TestSweep_SendsAtTheConfiguredMinute(t *testing.T) {
	// 03:30 UTC is 08:30 in the UTC+5 target zone.
	now := time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC)
	sched, store, notifier, clk := newSchedulerHarness(t, now)

	addChallenge(t, store, clk, 7, []models.Reminder{{Hour: 8, Minute: 30, Text: "wake up"}})
	addChallenge(t, store, clk, 8, []models.Reminder{{Hour: 9, Minute: 0, Text: "too early"}})

	sched.Sweep(now)

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d reminders, want 1: %v", len(notifier.sent), notifier.sent)
	}
	if !strings.Contains(notifier.sent[0], "wake up") {
		t.Errorf("reminder text = %q, want it to carry the configured text", notifier.sent[0])
	}
	if !strings.Contains(notifier.sent[0], "/done") {
		t.Errorf("reminder text = %q, want the check-in hint", notifier.sent[0])
	}

	// Retention deletion was scheduled for the sent message.
	if len(notifier.deleted) != 1 {
		t.Errorf("deleted %d messages, want 1", len(notifier.deleted))
	}
}

func TestSweep_SkipsWhenTodayIsAlreadyDone(t *testing.T) {
	now := time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC)
	sched, store, notifier, clk := newSchedulerHarness(t, now)

	ch := addChallenge(t, store, clk, 7, []models.Reminder{{Hour: 8, Minute: 30, Text: "wake up"}})

	ev := models.CheckinEvent{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		ChatID:      ch.ChatID,
		TopicID:     ch.TopicID,
		UserID:      555,
		Type:        models.EventDone,
		Day:         1,
		CreatedAt:   clk.Now(),
	}
	if err := store.AddEvent(ev); err != nil {
		t.Fatalf("failed to add event: %v", err)
	}

	sched.Sweep(now)

	if len(notifier.sent) != 0 {
		t.Errorf("sent %d reminders, want 0 when today is done: %v", len(notifier.sent), notifier.sent)
	}
}

func TestSweep_YesterdaysDoneDoesNotSuppress(t *testing.T) {
	now := time.Date(2025, 1, 11, 3, 30, 0, 0, time.UTC)
	sched, store, notifier, clk := newSchedulerHarness(t, now)

	ch := addChallenge(t, store, clk, 7, []models.Reminder{{Hour: 8, Minute: 30, Text: "wake up"}})

	// Done event recorded yesterday.
	ev := models.CheckinEvent{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		ChatID:      ch.ChatID,
		TopicID:     ch.TopicID,
		UserID:      555,
		Type:        models.EventDone,
		Day:         1,
		CreatedAt:   clk.Now().Add(-24 * time.Hour),
	}
	if err := store.AddEvent(ev); err != nil {
		t.Fatalf("failed to add event: %v", err)
	}

	sched.Sweep(now)

	if len(notifier.sent) != 1 {
		t.Errorf("sent %d reminders, want 1: yesterday's done is not today's", len(notifier.sent))
	}
}

func TestSweep_MissToday_StillReminds(t *testing.T) {
	now := time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC)
	sched, store, notifier, clk := newSchedulerHarness(t, now)

	ch := addChallenge(t, store, clk, 7, []models.Reminder{{Hour: 8, Minute: 30, Text: "wake up"}})

	// Only done events suppress the reminder; a recorded miss does not.
	ev := models.CheckinEvent{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		ChatID:      ch.ChatID,
		TopicID:     ch.TopicID,
		UserID:      555,
		Type:        models.EventMiss,
		Day:         1,
		CreatedAt:   clk.Now(),
	}
	if err := store.AddEvent(ev); err != nil {
		t.Fatalf("failed to add event: %v", err)
	}

	sched.Sweep(now)

	if len(notifier.sent) != 1 {
		t.Errorf("sent %d reminders, want 1 despite the miss", len(notifier.sent))
	}
}

func TestSweep_SendFailureDoesNotAbort(t *testing.T) {
	now := time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC)
	sched, store, notifier, clk := newSchedulerHarness(t, now)
	notifier.failSend = true

	addChallenge(t, store, clk, 7, []models.Reminder{{Hour: 8, Minute: 30, Text: "wake up"}})

	// The sweep logs and moves on; no panic, no deletes scheduled.
	sched.Sweep(now)

	if len(notifier.deleted) != 0 {
		t.Errorf("deleted %d messages, want 0 after a failed send", len(notifier.deleted))
	}
}
