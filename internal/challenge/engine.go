package challenge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"streakbot/internal/clock"
	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
	"streakbot/internal/storage"
)

// Engine implements the progress-tracking core: lazy challenge creation
// per (chat, topic), done/miss marking with duplicate and out-of-range
// rejection, and streak analytics over the check-in ledger.
type Engine struct {
	store storage.Provider
	clock *clock.Clock
}

func New(store storage.Provider, clk *clock.Clock) *Engine {
	return &Engine{store: store, clock: clk}
}

// GetOrCreate returns the active challenge for the topic, creating one
// if none exists. The title hint is parsed for a "<title> / <N> days"
// shape; an unparseable hint is used verbatim, an empty one falls back
// to a placeholder. A create that races into the one-active-per-topic
// constraint refetches and returns the winner, so the call is idempotent.
func (e *Engine) GetOrCreate(chatID, topicID int64, titleHint string) (models.Challenge, error) {
	if chatID == 0 || topicID == 0 {
		return models.Challenge{}, apperrors.InvalidArgumentf("chat and topic ids are required")
	}

	ch, err := e.store.FindActiveChallenge(chatID, topicID)
	if err == nil {
		return ch, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return models.Challenge{}, err
	}

	title, totalDays := ParseTitleHint(titleHint)
	if title == "" {
		title = fmt.Sprintf("Topic %d", topicID)
	}

	now := e.clock.Now()
	ch = models.Challenge{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		TopicID:   topicID,
		Title:     title,
		TotalDays: totalDays,
		StartDate: now,
		Status:    models.ChallengeActive,
		CreatedAt: now,
	}
	if err := e.store.AddChallenge(ch); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return e.store.FindActiveChallenge(chatID, topicID)
		}
		return models.Challenge{}, err
	}
	return ch, nil
}

// Mark records a done/miss check-in for the current target-zone day and
// returns the resolved day number. An optional free-text note is stored
// with the event. A mark landing past a known totalDays window closes
// the challenge and is itself rejected; whether the user's check-in
// intent for that boundary day should be preserved instead is an open
// product question, so the observed behavior is kept as is.
func (e *Engine) Mark(challengeID string, userID int64, typ models.EventType, note string) (int, error) {
	ch, err := e.store.GetChallenge(challengeID)
	if err != nil {
		return 0, err
	}
	if !ch.IsActive() {
		return 0, apperrors.InvalidStatef("challenge %q is not active", ch.Title)
	}

	day := e.clock.DayNumber(ch.StartDate, e.clock.Now())
	if day < 1 {
		return 0, apperrors.InvalidStatef("challenge has not started yet")
	}

	if ch.TotalDays > 0 && day > ch.TotalDays {
		if err := e.store.SetChallengeStatus(ch.ID, models.ChallengeCompleted); err != nil {
			return 0, err
		}
		return 0, apperrors.Expiredf("the %d-day window is over, challenge closed", ch.TotalDays)
	}

	ev := models.CheckinEvent{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		ChatID:      ch.ChatID,
		TopicID:     ch.TopicID,
		UserID:      userID,
		Type:        typ,
		Day:         day,
		Note:        strings.TrimSpace(note),
		CreatedAt:   e.clock.Now(),
	}
	if err := e.store.AddEvent(ev); err != nil {
		return 0, err
	}

	// Auto-complete when the final day lands done.
	if typ == models.EventDone && ch.TotalDays > 0 && day == ch.TotalDays {
		if err := e.store.SetChallengeStatus(ch.ID, models.ChallengeCompleted); err != nil {
			return 0, err
		}
	}

	return day, nil
}

// Status summarizes a challenge's check-in ledger.
type Status struct {
	Title      string
	TotalDays  int // 0 = open-ended
	Today      int
	DoneCount  int
	MissCount  int
	Streak     int
	BestStreak int
	Left       int // meaningful only when TotalDays > 0
}

func (e *Engine) Status(challengeID string) (Status, error) {
	ch, err := e.store.GetChallenge(challengeID)
	if err != nil {
		return Status{}, err
	}

	events, err := e.store.ListEvents(ch.ID)
	if err != nil {
		return Status{}, err
	}

	doneDays := map[int]bool{}
	missDays := map[int]bool{}
	for _, ev := range events {
		switch ev.Type {
		case models.EventDone:
			doneDays[ev.Day] = true
		case models.EventMiss:
			missDays[ev.Day] = true
		}
	}

	today := e.clock.DayNumber(ch.StartDate, e.clock.Now())

	// Current streak: walk back from today while each day is done.
	streak := 0
	for d := today; d >= 1 && doneDays[d]; d-- {
		streak++
	}

	// Best streak: longest unbroken done run; a miss or a gap both break it.
	maxDay := today
	if ch.TotalDays > 0 && ch.TotalDays < maxDay {
		maxDay = ch.TotalDays
	}
	best, run := 0, 0
	for d := 1; d <= maxDay; d++ {
		if doneDays[d] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}

	st := Status{
		Title:      ch.Title,
		TotalDays:  ch.TotalDays,
		Today:      today,
		DoneCount:  len(doneDays),
		MissCount:  len(missDays),
		Streak:     streak,
		BestStreak: best,
	}
	if ch.TotalDays > 0 {
		if left := ch.TotalDays - st.DoneCount; left > 0 {
			st.Left = left
		}
	}
	return st, nil
}

// Analytics extends Status with a completion percentage and a naive
// completion forecast. The forecast is a fixed heuristic score, not a
// statistical model.
type Analytics struct {
	Status
	Completion int // valid only when TotalDays > 0
	Forecast   int
}

func (e *Engine) Analytics(challengeID string) (Analytics, error) {
	st, err := e.Status(challengeID)
	if err != nil {
		return Analytics{}, err
	}

	a := Analytics{Status: st}
	if st.TotalDays > 0 {
		a.Completion = int(float64(st.DoneCount)/float64(st.TotalDays)*100 + 0.5)
	}

	forecast := 40 + st.Streak*8 - st.MissCount*10
	if forecast > 95 {
		forecast = 95
	}
	if forecast < 10 {
		forecast = 10
	}
	a.Forecast = forecast

	return a, nil
}

// ListActive returns a chat's active challenges, most recently created first.
func (e *Engine) ListActive(chatID int64) ([]models.Challenge, error) {
	return e.store.ListActiveChallenges(chatID)
}

// AddReminder attaches a daily reminder to an active challenge.
func (e *Engine) AddReminder(challengeID string, hour, minute int, text string) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return apperrors.Validationf("reminder time must be a valid HH:MM")
	}
	if text == "" {
		return apperrors.Validationf("reminder text is required")
	}

	ch, err := e.store.GetChallenge(challengeID)
	if err != nil {
		return err
	}
	if !ch.IsActive() {
		return apperrors.InvalidStatef("challenge %q is not active", ch.Title)
	}

	reminders := append(ch.Reminders, models.Reminder{Hour: hour, Minute: minute, Text: text})
	return e.store.SetChallengeReminders(ch.ID, reminders)
}

// ClearReminders removes all reminders from a challenge.
func (e *Engine) ClearReminders(challengeID string) error {
	if _, err := e.store.GetChallenge(challengeID); err != nil {
		return err
	}
	return e.store.SetChallengeReminders(challengeID, nil)
}
