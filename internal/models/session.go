package models

import "time"

// SessionStatus is the lifecycle state of a form session. Done and
// cancelled are terminal.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionDone      SessionStatus = "done"
	SessionCancelled SessionStatus = "cancelled"
)

// FormSession is one report-wizard run for a (chat, topic, user, day)
// key. The store enforces at most one active session per key. StepIndex
// is a 0-based cursor into the form's fixed question sequence; each
// accepted answer advances it by exactly one.
type FormSession struct {
	ID          string                 `json:"id"`
	ChallengeID string                 `json:"challenge_id"`
	ChatID      int64                  `json:"chat_id"`
	TopicID     int64                  `json:"topic_id"`
	UserID      int64                  `json:"user_id"`
	Day         int                    `json:"day"`
	StepIndex   int                    `json:"step_index"`
	Answers     map[string]AnswerValue `json:"answers"`
	Status      SessionStatus          `json:"status"`
	FormKey     string                 `json:"form_key"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (s FormSession) IsActive() bool { return s.Status == SessionActive }
