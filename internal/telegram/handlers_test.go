package telegram

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"

	"streakbot/internal/clock"
	"streakbot/internal/forms"
	"streakbot/internal/models"
	"streakbot/internal/storage/sqlite"
)

type sentMessage struct {
	chatID  int64
	topicID int64
	text    string
}

// fakeContext satisfies the handler surface of tele.Context; methods the
// handlers never call panic through the embedded nil interface.
type fakeContext struct {
	tele.Context
	chat   *tele.Chat
	sender *tele.User
	msg    *tele.Message
	text   string
}

func (c *fakeContext) Chat() *tele.Chat       { return c.chat }
func (c *fakeContext) Sender() *tele.User     { return c.sender }
func (c *fakeContext) Message() *tele.Message { return c.msg }
func (c *fakeContext) Text() string           { return c.text }

func newBotHarness(t *testing.T) (*Bot, *[]sentMessage, models.Challenge) {
	t.Helper()

	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.New(5).WithNow(func() time.Time { return now })

	ch := models.Challenge{
		ID:        uuid.NewString(),
		ChatID:    100,
		TopicID:   7,
		Title:     "Wake at 4",
		TotalDays: 40,
		StartDate: now,
		Status:    models.ChallengeActive,
		CreatedAt: now,
	}
	if err := store.AddChallenge(ch); err != nil {
		t.Fatalf("failed to add challenge: %v", err)
	}

	var sent []sentMessage
	bot := &Bot{
		wizard: forms.New(store, clk),
		sendFn: func(chatID, topicID int64, text string, keyboard [][]forms.Button) (*tele.Message, error) {
			sent = append(sent, sentMessage{chatID: chatID, topicID: topicID, text: text})
			return &tele.Message{ID: len(sent)}, nil
		},
	}
	return bot, &sent, ch
}

func topicMessage(chatID, topicID, userID int64, text string) *fakeContext {
	return &fakeContext{
		chat:   &tele.Chat{ID: chatID},
		sender: &tele.User{ID: userID},
		msg:    &tele.Message{ID: 1, ThreadID: int(topicID)},
		text:   text,
	}
}

func TestHandleText_RejectedAnswerRepliesInTopic(t *testing.T) {
	bot, sent, ch := newBotHarness(t)

	if _, err := bot.wizard.Start(ch, 555, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	c := topicMessage(ch.ChatID, ch.TopicID, 555, "four-ish")
	if err := bot.handleText(c); err != nil {
		t.Fatalf("handleText failed: %v", err)
	}

	if len(*sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(*sent))
	}
	got := (*sent)[0]
	if got.topicID != ch.TopicID {
		t.Errorf("reply landed in thread %d, want topic %d", got.topicID, ch.TopicID)
	}
	if got.chatID != ch.ChatID || !strings.HasPrefix(got.text, "⚠️") {
		t.Errorf("reply = %+v, want a warning in chat %d", got, ch.ChatID)
	}
}

func TestHandleText_NextPromptRepliesInTopic(t *testing.T) {
	bot, sent, ch := newBotHarness(t)

	if _, err := bot.wizard.Start(ch, 555, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	c := topicMessage(ch.ChatID, ch.TopicID, 555, "04:05")
	if err := bot.handleText(c); err != nil {
		t.Fatalf("handleText failed: %v", err)
	}

	if len(*sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(*sent))
	}
	got := (*sent)[0]
	if got.topicID != ch.TopicID {
		t.Errorf("prompt landed in thread %d, want topic %d", got.topicID, ch.TopicID)
	}
	if !strings.Contains(got.text, "hours of sleep") {
		t.Errorf("prompt = %q, want the next step's question", got.text)
	}
}

func TestHandleText_OutsideTopicIsIgnored(t *testing.T) {
	bot, sent, ch := newBotHarness(t)

	if _, err := bot.wizard.Start(ch, 555, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	c := topicMessage(ch.ChatID, 0, 555, "04:05")
	if err := bot.handleText(c); err != nil {
		t.Fatalf("handleText failed: %v", err)
	}
	if len(*sent) != 0 {
		t.Errorf("sent %d messages, want 0 for a general-thread message", len(*sent))
	}
}

func TestParseClockArg(t *testing.T) {
	tests := []struct {
		arg        string
		wantHour   int
		wantMinute int
		wantOK     bool
	}{
		{"08:30", 8, 30, true},
		{"8:30", 8, 30, true},
		{"23:59", 23, 59, true},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"8.30", 0, 0, false},
		{"off", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			h, m, ok := parseClockArg(tt.arg)
			if h != tt.wantHour || m != tt.wantMinute || ok != tt.wantOK {
				t.Errorf("parseClockArg(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.arg, h, m, ok, tt.wantHour, tt.wantMinute, tt.wantOK)
			}
		})
	}
}
