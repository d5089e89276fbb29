package storage

import (
	"net/url"
	"strings"
	"time"

	"streakbot/internal/models"
)

// Provider is the persistence boundary for the three record kinds. All
// uniqueness rules live in the backing schema, not in application code,
// so that concurrent writers resolve deterministically: exactly one
// wins, the rest observe a conflict.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Challenges
	AddChallenge(models.Challenge) error
	GetChallenge(id string) (models.Challenge, error)
	FindActiveChallenge(chatID, topicID int64) (models.Challenge, error)
	ListActiveChallenges(chatID int64) ([]models.Challenge, error)
	// ListRemindable returns active challenges with at least one reminder.
	ListRemindable() ([]models.Challenge, error)
	SetChallengeStatus(id string, status models.ChallengeStatus) error
	SetChallengeReminders(id string, reminders []models.Reminder) error

	// Check-in events. AddEvent fails with ErrConflict when an event
	// already exists for the same (challenge, day).
	AddEvent(models.CheckinEvent) error
	ListEvents(challengeID string) ([]models.CheckinEvent, error)
	HasDoneEventSince(challengeID string, since time.Time) (bool, error)
	// MergeEventMeta folds the given answers into the meta mapping of the
	// done event for (challengeID, day). A missing event is a no-op.
	MergeEventMeta(challengeID string, day int, meta map[string]models.AnswerValue) error

	// Form sessions. AddSession fails with ErrConflict when an active
	// session already exists for the same (chat, topic, user, day).
	AddSession(models.FormSession) error
	GetSession(id string) (models.FormSession, error)
	FindActiveSession(chatID, topicID, userID int64) (models.FormSession, error)
	FindActiveSessionForDay(chatID, topicID, userID int64, day int) (models.FormSession, error)
	UpdateSession(models.FormSession) error

	// Utils
	GetConfigPath() string
}

// IsPostgres reports whether the config string selects the PostgreSQL
// backend rather than a SQLite file path.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries an inline password. Those are rejected; credentials belong in
// the environment or .pgpass.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}
