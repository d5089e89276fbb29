package telegram

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"streakbot/internal/constants"
	"streakbot/internal/forms"
	"streakbot/internal/logger"
	"streakbot/internal/models"
)

type topicContext struct {
	chatID  int64
	topicID int64
	userID  int64
	ch      models.Challenge
}

// ensureTopicChallenge resolves the chat/topic/user triple for a command
// and lazily creates the topic's challenge. A nil result means the
// command was already answered (wrong chat, outside a topic).
func (b *Bot) ensureTopicChallenge(c tele.Context) (*topicContext, error) {
	if c.Chat() == nil || c.Sender() == nil || c.Message() == nil {
		return nil, nil
	}
	chatID := c.Chat().ID
	userID := c.Sender().ID

	if b.allowedChat != 0 && chatID != b.allowedChat {
		return nil, c.Send("⛔ This bot is configured for another chat.")
	}

	topicID := int64(c.Message().ThreadID)
	if topicID == 0 {
		return nil, c.Send("⚠️ Use this command inside a challenge topic.")
	}

	ch, err := b.engine.GetOrCreate(chatID, topicID, topicTitleHint(c.Message()))
	if err != nil {
		return nil, b.replyEphemeral(c, topicID, "⚠️ "+err.Error())
	}

	return &topicContext{chatID: chatID, topicID: topicID, userID: userID, ch: ch}, nil
}

// topicTitleHint pulls the topic name when the message happens to carry
// the creation service event; otherwise the engine falls back to a
// placeholder title.
func topicTitleHint(m *tele.Message) string {
	if m.TopicCreated != nil {
		return m.TopicCreated.Name
	}
	return ""
}

func (b *Bot) handleDone(c tele.Context) error {
	tc, err := b.ensureTopicChallenge(c)
	if tc == nil {
		return err
	}

	day, err := b.engine.Mark(tc.ch.ID, tc.userID, models.EventDone, strings.Join(c.Args(), " "))
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}

	st, err := b.engine.Status(tc.ch.ID)
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}
	reply := fmt.Sprintf("✅ Day %d done\n🔥 Streak: %d\n🏁 Done: %d/%s",
		day, st.Streak, st.DoneCount, totalDaysLabel(st.TotalDays))
	if err := b.replyEphemeral(c, tc.topicID, reply); err != nil {
		return err
	}

	// A done day opens the daily report.
	res, err := b.wizard.Start(tc.ch, tc.userID, day)
	if err != nil {
		logger.Warn("failed to start report wizard", "challenge", tc.ch.ID, "error", err)
		return nil
	}
	if _, err := b.send(tc.chatID, tc.topicID, "📝 Let's fill in the daily report. (Cancel anytime: /cancel_form)", nil); err != nil {
		return err
	}
	return b.sendResult(tc.chatID, tc.topicID, res)
}

func (b *Bot) handleMiss(c tele.Context) error {
	tc, err := b.ensureTopicChallenge(c)
	if tc == nil {
		return err
	}

	day, err := b.engine.Mark(tc.ch.ID, tc.userID, models.EventMiss, strings.Join(c.Args(), " "))
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}

	st, err := b.engine.Status(tc.ch.ID)
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}
	return b.replyEphemeral(c, tc.topicID, fmt.Sprintf("❌ Day %d missed\n📉 Missed: %d\n🏁 Done: %d/%s",
		day, st.MissCount, st.DoneCount, totalDaysLabel(st.TotalDays)))
}

func (b *Bot) handleStatus(c tele.Context) error {
	tc, err := b.ensureTopicChallenge(c)
	if tc == nil {
		return err
	}

	st, err := b.engine.Status(tc.ch.ID)
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}

	return b.replyEphemeral(c, tc.topicID, fmt.Sprintf(
		"📊 Challenge %q\n\n📅 Today: Day %d\n✔ Done: %d\n❌ Missed: %d\n🔥 Streak: %d\n🏆 Best streak: %d",
		st.Title, st.Today, st.DoneCount, st.MissCount, st.Streak, st.BestStreak))
}

func (b *Bot) handleAnalytics(c tele.Context) error {
	tc, err := b.ensureTopicChallenge(c)
	if tc == nil {
		return err
	}

	a, err := b.engine.Analytics(tc.ch.ID)
	if err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}

	completion := "—"
	if a.TotalDays > 0 {
		completion = fmt.Sprintf("%d%%", a.Completion)
	}
	return b.replyEphemeral(c, tc.topicID, fmt.Sprintf(
		"📈 ANALYTICS\n\n• Completion: %s\n• Streak: %d (best %d)\n• Missed: %d\n• Forecast: %d%%",
		completion, a.Streak, a.BestStreak, a.MissCount, a.Forecast))
}

// handleRemind manages a topic's daily reminders:
//
//	/remind 08:00 morning check-in
//	/remind off
func (b *Bot) handleRemind(c tele.Context) error {
	tc, err := b.ensureTopicChallenge(c)
	if tc == nil {
		return err
	}

	args := c.Args()
	if len(args) == 0 {
		return b.replyEphemeral(c, tc.topicID, remindersLabel(tc.ch.Reminders))
	}

	if args[0] == "off" {
		if err := b.engine.ClearReminders(tc.ch.ID); err != nil {
			return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
		}
		return b.replyEphemeral(c, tc.topicID, "🔕 Reminders cleared.")
	}

	hour, minute, ok := parseClockArg(args[0])
	if !ok {
		return b.replyEphemeral(c, tc.topicID, "⚠️ Usage: /remind HH:MM <text>, or /remind off")
	}
	text := strings.Join(args[1:], " ")
	if text == "" {
		text = tc.ch.Title
	}

	if err := b.engine.AddReminder(tc.ch.ID, hour, minute, text); err != nil {
		return b.replyEphemeral(c, tc.topicID, "⚠️ "+err.Error())
	}
	return b.replyEphemeral(c, tc.topicID, fmt.Sprintf("🔔 Reminder set for %02d:%02d.", hour, minute))
}

func (b *Bot) handleCancelForm(c tele.Context) error {
	if c.Chat() == nil || c.Sender() == nil || c.Message() == nil {
		return nil
	}
	topicID := int64(c.Message().ThreadID)
	if topicID == 0 {
		return nil
	}

	cancelled, err := b.wizard.Cancel(c.Chat().ID, topicID, c.Sender().ID)
	if err != nil {
		return b.replyEphemeral(c, topicID, "⚠️ "+err.Error())
	}
	if !cancelled {
		return b.replyEphemeral(c, topicID, "No active form.")
	}
	return b.replyEphemeral(c, topicID, "❎ Form cancelled.")
}

// handleText feeds free text into the report wizard. Messages outside an
// active session fall through silently.
func (b *Bot) handleText(c tele.Context) error {
	if c.Chat() == nil || c.Sender() == nil || c.Message() == nil {
		return nil
	}
	if b.allowedChat != 0 && c.Chat().ID != b.allowedChat {
		return nil
	}
	topicID := int64(c.Message().ThreadID)
	if topicID == 0 {
		return nil
	}

	res, err := b.wizard.SubmitText(c.Chat().ID, topicID, c.Sender().ID, c.Text())
	if err != nil {
		// Rejected answers must land in the topic the user is answering
		// in, not the chat's general thread.
		_, serr := b.send(c.Chat().ID, topicID, "⚠️ "+err.Error(), nil)
		return serr
	}
	if res == nil {
		return nil
	}
	return b.sendResult(c.Chat().ID, topicID, res)
}

// handleCallback routes wizard keyboard presses. Payload wire format:
// form:<sessionId>:<stepKey>:<value>.
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}

	data := strings.TrimPrefix(strings.TrimSpace(cb.Data), "\f")
	parts := strings.SplitN(data, ":", 4)
	if len(parts) != 4 || parts[0] != constants.CallbackPrefix {
		return c.Respond(&tele.CallbackResponse{})
	}

	res, err := b.wizard.SubmitChoice(parts[1], parts[2], parts[3])
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: err.Error()})
	}
	if res == nil {
		// Stale keyboard from an earlier step.
		return c.Respond(&tele.CallbackResponse{})
	}

	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		logger.Debug("callback respond failed", "error", err)
	}
	if cb.Message != nil {
		// Drop the answered keyboard so the step cannot be pressed twice.
		if _, err := b.bot.EditReplyMarkup(cb.Message, nil); err != nil {
			logger.Debug("failed to drop keyboard", "error", err)
		}
	}
	return b.sendResult(res.Session.ChatID, res.Session.TopicID, res)
}

// sendResult delivers a wizard step outcome: the next prompt, or the
// finished report.
func (b *Bot) sendResult(chatID, topicID int64, res *forms.Result) error {
	if res.Done {
		if _, err := b.send(chatID, topicID, "✅ Report saved. Here is the entry:", nil); err != nil {
			return err
		}
		_, err := b.send(chatID, topicID, res.Report, nil)
		return err
	}
	if res.Next != nil {
		_, err := b.send(chatID, topicID, res.Next.Text, res.Next.Keyboard)
		return err
	}
	return nil
}

func totalDaysLabel(totalDays int) string {
	if totalDays <= 0 {
		return "—"
	}
	return fmt.Sprintf("%d", totalDays)
}

func remindersLabel(reminders []models.Reminder) string {
	if len(reminders) == 0 {
		return "🔕 No reminders set. Use /remind HH:MM <text>."
	}
	lines := make([]string, len(reminders))
	for i, r := range reminders {
		lines[i] = fmt.Sprintf("• %02d:%02d %s", r.Hour, r.Minute, r.Text)
	}
	return "🔔 Reminders:\n" + strings.Join(lines, "\n")
}

func parseClockArg(arg string) (int, int, bool) {
	t, err := time.Parse(constants.TimeFormat, arg)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
