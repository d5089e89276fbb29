package models

import "time"

// ChallengeStatus is the lifecycle state of a challenge. Completed and
// failed are terminal.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

// Reminder is a daily wall-clock reminder attached to a challenge. Hour
// and Minute are in the fixed target zone.
type Reminder struct {
	Hour   int    `json:"hh"`
	Minute int    `json:"mm"`
	Text   string `json:"text"`
}

// Challenge is one tracked habit bound to a chat forum topic. At most one
// challenge per (chat, topic) may be active at a time; a topic may get a
// new challenge after the previous one completes or fails.
type Challenge struct {
	ID        string          `json:"id"`
	ChatID    int64           `json:"chat_id"`
	TopicID   int64           `json:"topic_id"`
	Title     string          `json:"title"`
	TotalDays int             `json:"total_days,omitempty"` // 0 = open-ended
	StartDate time.Time       `json:"start_date"`           // day 1
	Status    ChallengeStatus `json:"status"`
	Reminders []Reminder      `json:"reminders,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (c Challenge) IsActive() bool { return c.Status == ChallengeActive }

// RemindersAt returns the texts of reminders configured for the given
// target-zone hour and minute.
func (c Challenge) RemindersAt(hour, minute int) []string {
	var texts []string
	for _, r := range c.Reminders {
		if r.Hour == hour && r.Minute == minute {
			texts = append(texts, r.Text)
		}
	}
	return texts
}
