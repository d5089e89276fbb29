package models

import "time"

// EventType is the kind of daily check-in fact.
type EventType string

const (
	EventDone EventType = "done"
	EventMiss EventType = "miss"
)

// CheckinEvent is one immutable done/miss fact per (challenge, day). The
// store enforces that uniqueness; a second mark for the same day fails
// with a conflict. Meta is filled in once, later, when the report wizard
// for that day completes.
type CheckinEvent struct {
	ID          string                 `json:"id"`
	ChallengeID string                 `json:"challenge_id"`
	ChatID      int64                  `json:"chat_id"`
	TopicID     int64                  `json:"topic_id"`
	UserID      int64                  `json:"user_id"`
	Type        EventType              `json:"type"`
	Day         int                    `json:"day"` // 1-based challenge day
	Note        string                 `json:"note,omitempty"`
	Meta        map[string]AnswerValue `json:"meta,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
