package forms

import (
	"strings"

	"github.com/google/uuid"

	"streakbot/internal/clock"
	apperrors "streakbot/internal/errors"
	"streakbot/internal/logger"
	"streakbot/internal/models"
	"streakbot/internal/storage"
)

// Wizard runs the per-user, per-day report state machine. Each session
// walks a form's fixed question sequence one validated answer at a time
// and, on completion, folds the answers into the day's done event.
type Wizard struct {
	store storage.Provider
	clock *clock.Clock
}

func New(store storage.Provider, clk *clock.Clock) *Wizard {
	return &Wizard{store: store, clock: clk}
}

// Result is the outcome of a wizard interaction. Next holds the prompt
// for the upcoming step; when the sequence is exhausted Done is set and
// Report carries the rendered daily report instead.
type Result struct {
	Session models.FormSession
	Next    *Prompt
	Done    bool
	Report  string
}

// Start opens a report session for the given done day. If an active
// session already exists for the (chat, topic, user, day) key — including
// one created by a concurrent duplicate trigger losing the store's
// uniqueness race — it is reused, so Start is idempotent.
func (w *Wizard) Start(ch models.Challenge, userID int64, day int) (*Result, error) {
	now := w.clock.Now()
	sess := models.FormSession{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		ChatID:      ch.ChatID,
		TopicID:     ch.TopicID,
		UserID:      userID,
		Day:         day,
		StepIndex:   0,
		Answers:     map[string]models.AnswerValue{},
		Status:      models.SessionActive,
		FormKey:     FormKeyWakeAt4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.store.AddSession(sess); err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		existing, err := w.store.FindActiveSessionForDay(ch.ChatID, ch.TopicID, userID, day)
		if err != nil {
			return nil, err
		}
		sess = existing
	}

	steps := Steps(sess.FormKey)
	if sess.StepIndex >= len(steps) {
		return w.finish(sess)
	}
	return &Result{Session: sess, Next: buildPrompt(sess.ID, steps[sess.StepIndex])}, nil
}

// SubmitText handles a typed answer for the user's active session.
// Command-looking input and the absence of an active session are silent
// no-ops (nil result). Malformed or out-of-range answers fail with
// ErrValidation and do not advance the session.
func (w *Wizard) SubmitText(chatID, topicID, userID int64, text string) (*Result, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		return nil, nil
	}

	sess, err := w.store.FindActiveSession(chatID, topicID, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	steps := Steps(sess.FormKey)
	if sess.StepIndex >= len(steps) {
		return nil, nil
	}
	step := steps[sess.StepIndex]

	value, err := parseText(step, text)
	if err != nil {
		return nil, err
	}
	return w.advance(sess, step, value)
}

// SubmitChoice handles a button answer carried by a
// form:<sessionId>:<stepKey>:<value> payload. A session that is no
// longer active, or a stepKey that is not the session's current step
// (a stale keyboard from an earlier question), is a silent no-op.
func (w *Wizard) SubmitChoice(sessionID, stepKey, rawValue string) (*Result, error) {
	sess, err := w.store.GetSession(sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !sess.IsActive() {
		return nil, nil
	}

	steps := Steps(sess.FormKey)
	if sess.StepIndex >= len(steps) {
		return nil, nil
	}
	step := steps[sess.StepIndex]
	if step.Key != stepKey {
		return nil, nil
	}

	value, err := parseChoice(step, rawValue)
	if err != nil {
		return nil, err
	}
	return w.advance(sess, step, value)
}

// Cancel marks the user's active session cancelled. Returns false when
// there was nothing to cancel.
func (w *Wizard) Cancel(chatID, topicID, userID int64) (bool, error) {
	sess, err := w.store.FindActiveSession(chatID, topicID, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	sess.Status = models.SessionCancelled
	sess.UpdatedAt = w.clock.Now()
	if err := w.store.UpdateSession(sess); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Wizard) advance(sess models.FormSession, step Step, value models.AnswerValue) (*Result, error) {
	if sess.Answers == nil {
		sess.Answers = map[string]models.AnswerValue{}
	}
	sess.Answers[step.Key] = value
	sess.StepIndex++
	sess.UpdatedAt = w.clock.Now()
	if err := w.store.UpdateSession(sess); err != nil {
		return nil, err
	}

	steps := Steps(sess.FormKey)
	if sess.StepIndex >= len(steps) {
		return w.finish(sess)
	}
	return &Result{Session: sess, Next: buildPrompt(sess.ID, steps[sess.StepIndex])}, nil
}

func (w *Wizard) finish(sess models.FormSession) (*Result, error) {
	sess.Status = models.SessionDone
	sess.UpdatedAt = w.clock.Now()
	if err := w.store.UpdateSession(sess); err != nil {
		return nil, err
	}

	totalDays := 0
	if ch, err := w.store.GetChallenge(sess.ChallengeID); err == nil {
		totalDays = ch.TotalDays
	} else {
		logger.Warn("report finished for a missing challenge", "challenge", sess.ChallengeID, "error", err)
	}

	// Best-effort: the day's done event may be gone if the session
	// outlived its triggering mark.
	if err := w.store.MergeEventMeta(sess.ChallengeID, sess.Day, sess.Answers); err != nil {
		logger.Warn("failed to attach report answers to check-in", "challenge", sess.ChallengeID, "day", sess.Day, "error", err)
	}

	report := renderReport(sess.Day, totalDays, w.clock.Now(), sess.Answers)
	return &Result{Session: sess, Done: true, Report: report}, nil
}
