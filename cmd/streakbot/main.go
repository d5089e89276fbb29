package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"streakbot/internal/cli"
	"streakbot/internal/constants"
	apperrors "streakbot/internal/errors"
	"streakbot/internal/logger"
	"streakbot/internal/storage"
	"streakbot/internal/storage/postgres"
	"streakbot/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables or .pgpass instead." type:"string" default:"${config_path}"`
	Token   string `help:"Telegram bot token. Falls back to $STREAKBOT_TOKEN, then the OS keyring." env:"STREAKBOT_TOKEN"`

	AllowedChat int64  `help:"Restrict the bot to a single chat ID. 0 allows any chat." default:"0"`
	UTCOffset   int    `help:"UTC offset in hours for day boundaries and reminder times." default:"${utc_offset}"`
	Debug       bool   `help:"Enable debug logging."`
	LogDir      string `help:"Directory for rotating log files. Empty logs to stderr only."`

	Init     cli.InitCmd `cmd:"" help:"Initialize streakbot storage."`
	Run      cli.RunCmd  `cmd:"" help:"Run the bot." default:"1"`
	BotToken struct {
		Set    cli.TokenSetCmd    `cmd:"" help:"Store the bot token in the OS keyring."`
		Delete cli.TokenDeleteCmd `cmd:"" help:"Remove the bot token from the OS keyring."`
	} `cmd:"" help:"Manage the bot token."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("streakbot"),
		kong.Description("Telegram habit-challenge bot: per-topic check-ins, streaks, daily reports, reminders"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
			"utc_offset":  strconv.Itoa(constants.DefaultUTCOffsetHours),
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Dir: CLI.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	config := expandHome(CLI.Config)

	var store storage.Provider
	if storage.IsPostgres(config) {
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintln(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.")
			fmt.Fprintln(os.Stderr, "       Use environment variables (PGPASSWORD) or a .pgpass file instead.")
			os.Exit(1)
		}
		store = postgres.New(config)
	} else {
		store = sqlite.New(config)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:       store,
		Token:       CLI.Token,
		AllowedChat: CLI.AllowedChat,
		UTCOffset:   CLI.UTCOffset,
		Debug:       CLI.Debug,
	}

	// Load the store before running commands that need it; init handles
	// its own setup, and token commands never touch storage.
	selected := ""
	if ctx.Selected() != nil {
		selected = ctx.Selected().Name
	}
	if selected == "run" {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
