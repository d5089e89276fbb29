package cli

import (
	"streakbot/internal/storage"
)

// Context carries the resolved runtime configuration into commands.
type Context struct {
	Store       storage.Provider
	Token       string
	AllowedChat int64
	UTCOffset   int
	Debug       bool
}
