package constants

import "time"

const (
	AppName            = "streakbot"
	Version            = "v0.2.0"
	DefaultKeyringUser = "bot-token"
	DefaultConfigPath  = "~/.config/streakbot/streakbot.db"

	// DateFormat is the standard date format used throughout the application (DD.MM.YYYY)
	DateFormat = "02.01.2006"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DefaultUTCOffsetHours is the fixed target-zone offset used for all
	// day-boundary computations (Asia/Almaty).
	DefaultUTCOffsetHours = 5

	// SweepInterval is how often the reminder scheduler scans for due reminders.
	SweepInterval = time.Minute

	// ReminderRetention is how long a sent reminder message lives before
	// best-effort deletion.
	ReminderRetention = time.Hour

	// ReplyRetention is how long command replies live before best-effort deletion.
	ReplyRetention = time.Minute

	// CallbackPrefix is the wire prefix for wizard keyboard payloads:
	// form:<sessionId>:<stepKey>:<value>
	CallbackPrefix = "form"
)
