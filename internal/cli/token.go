package cli

import (
	"fmt"

	"streakbot/internal/keyring"
)

// TokenSetCmd stores the Telegram bot token in the OS keyring
type TokenSetCmd struct {
	Token string `arg:"" help:"Telegram bot token to store in the keyring."`
}

func (c *TokenSetCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	if err := keyring.SetToken(c.Token); err != nil {
		return err
	}
	fmt.Println("✅ Bot token stored in the OS keyring.")
	return nil
}

// TokenDeleteCmd removes the stored bot token from the OS keyring
type TokenDeleteCmd struct{}

func (c *TokenDeleteCmd) Run(ctx *Context) error {
	err := keyring.DeleteToken()
	if err == keyring.ErrNotFound {
		fmt.Println("No token stored.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("✅ Bot token removed from the OS keyring.")
	return nil
}
