package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"streakbot/internal/challenge"
	"streakbot/internal/clock"
	"streakbot/internal/constants"
	"streakbot/internal/forms"
	"streakbot/internal/keyring"
	"streakbot/internal/logger"
	"streakbot/internal/reminder"
	"streakbot/internal/telegram"
)

// RunCmd starts the bot: long polling plus the reminder sweep loop.
// It blocks until SIGINT/SIGTERM.
type RunCmd struct{}

func (c *RunCmd) Run(ctx *Context) error {
	token := ctx.Token
	if token == "" {
		stored, err := keyring.GetToken()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return fmt.Errorf("no bot token configured: pass --token, set STREAKBOT_TOKEN, or run 'streakbot bot-token set'")
			}
			return err
		}
		token = stored
	}

	clk := clock.New(ctx.UTCOffset)
	engine := challenge.New(ctx.Store, clk)
	wizard := forms.New(ctx.Store, clk)

	bot, err := telegram.New(token, engine, wizard, ctx.AllowedChat)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	sched := reminder.New(ctx.Store, clk, bot, constants.SweepInterval, constants.ReminderRetention)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sched.Run(appCtx)
	go func() {
		<-appCtx.Done()
		bot.Stop()
	}()

	logger.Info("streakbot running", "utc_offset", ctx.UTCOffset, "allowed_chat", ctx.AllowedChat)
	bot.Start()
	return nil
}
