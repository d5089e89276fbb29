package telegram

import (
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"streakbot/internal/challenge"
	"streakbot/internal/constants"
	"streakbot/internal/forms"
	"streakbot/internal/logger"
)

// Bot is the chat transport: it routes commands, free text, and inline
// keyboard callbacks into the challenge engine and the report wizard,
// and doubles as the reminder scheduler's Notifier.
type Bot struct {
	bot         *tele.Bot
	engine      *challenge.Engine
	wizard      *forms.Wizard
	allowedChat int64 // 0 = any chat

	// sendFn posts into a topic; swapped in tests.
	sendFn func(chatID, topicID int64, text string, keyboard [][]forms.Button) (*tele.Message, error)
}

func New(token string, engine *challenge.Engine, wizard *forms.Wizard, allowedChat int64) (*Bot, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		bot:         b,
		engine:      engine,
		wizard:      wizard,
		allowedChat: allowedChat,
	}
	bot.sendFn = bot.apiSend
	bot.route()
	return bot, nil
}

func (b *Bot) route() {
	b.bot.Handle("/done", b.handleDone)
	b.bot.Handle("/miss", b.handleMiss)
	b.bot.Handle("/status", b.handleStatus)
	b.bot.Handle("/analytics", b.handleAnalytics)
	b.bot.Handle("/remind", b.handleRemind)
	b.bot.Handle("/cancel_form", b.handleCancelForm)
	b.bot.Handle(tele.OnText, b.handleText)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() {
	logger.Info("bot started", "username", b.bot.Me.Username)
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

// SendReminder implements reminder.Notifier.
func (b *Bot) SendReminder(chatID, topicID int64, text string) (int, error) {
	msg, err := b.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{ThreadID: int(topicID)})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// DeleteMessage implements reminder.Notifier.
func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	return b.bot.Delete(tele.StoredMessage{ChatID: chatID, MessageID: strconv.Itoa(messageID)})
}

// send posts a message into a topic, with an optional wizard keyboard.
// Every reply goes through here so the forum thread id is always set.
func (b *Bot) send(chatID, topicID int64, text string, keyboard [][]forms.Button) (*tele.Message, error) {
	return b.sendFn(chatID, topicID, text, keyboard)
}

func (b *Bot) apiSend(chatID, topicID int64, text string, keyboard [][]forms.Button) (*tele.Message, error) {
	opts := &tele.SendOptions{ThreadID: int(topicID)}
	if keyboard != nil {
		markup := &tele.ReplyMarkup{}
		for _, row := range keyboard {
			var btns []tele.InlineButton
			for _, btn := range row {
				btns = append(btns, tele.InlineButton{Text: btn.Label, Data: btn.Data})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, btns)
		}
		opts.ReplyMarkup = markup
	}
	return b.bot.Send(tele.ChatID(chatID), text, opts)
}

// autoDelete schedules a best-effort deletion of a message after ttl.
func (b *Bot) autoDelete(chatID int64, messageID int, ttl time.Duration) {
	if messageID == 0 {
		return
	}
	time.AfterFunc(ttl, func() {
		// No rights or already gone; ignore.
		_ = b.DeleteMessage(chatID, messageID)
	})
}

// replyEphemeral sends a reply into the topic and schedules both the
// triggering command and the reply for deletion after the retention
// window, keeping topics tidy.
func (b *Bot) replyEphemeral(c tele.Context, topicID int64, text string) error {
	msg, err := b.send(c.Chat().ID, topicID, text, nil)
	if err != nil {
		return err
	}
	b.autoDelete(c.Chat().ID, c.Message().ID, constants.ReplyRetention)
	b.autoDelete(c.Chat().ID, msg.ID, constants.ReplyRetention)
	return nil
}
