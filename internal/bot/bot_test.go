package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/chat"
	"github.com/xaenox/heartmatch/internal/discover"
	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/session"
	"github.com/xaenox/heartmatch/internal/storage"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func newTestBot(t *testing.T, feedOpts ...discover.Option) (*Bot, *fakeSender, *session.Manager) {
	t.Helper()
	fs := &fakeSender{}
	b := &Bot{sender: fs, logger: zap.NewNop()}
	mgr := session.NewManager(storage.NewMemoryStorage(), zap.NewNop(), b.NotifyReply,
		[]chat.Option{chat.WithReplyDelay(10 * time.Millisecond)}, feedOpts...)
	b.sessions = mgr
	t.Cleanup(mgr.Close)
	return b, fs, mgr
}

func command(userID int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestBot_RequiresLogin(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.handleMessage(context.Background(), command(1, "/chats"))
	assert.Equal(t, "Please /login or /signup first.", fs.last().Text)
}

func TestBot_LoginAndChats(t *testing.T) {
	ctx := context.Background()
	b, fs, mgr := newTestBot(t)

	b.handleMessage(ctx, command(1, "/login bob@example.com secret"))
	assert.Contains(t, fs.last().Text, "Welcome, testuser!")

	sess, err := mgr.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sess.Auth.Current())
	assert.Equal(t, "bob@example.com", sess.Auth.Current().Email)

	b.handleMessage(ctx, command(1, "/chats"))
	text := fs.last().Text
	assert.Contains(t, text, "emma (user1)")
	assert.Contains(t, text, "LoveBot (bot1)")
}

func TestBot_SendToHuman(t *testing.T) {
	ctx := context.Background()
	b, fs, mgr := newTestBot(t)
	b.handleMessage(ctx, command(1, "/signup alice alice@example.com pw"))

	b.handleMessage(ctx, command(1, "/send user2 want to grab coffee?"))
	assert.Equal(t, "Sent ✓", fs.last().Text)

	sess, _ := mgr.Get(ctx, 1)
	conv := sess.Chat.Conversation("user2")
	assert.Equal(t, "want to grab coffee?", conv[len(conv)-1].Content)
	assert.False(t, conv[len(conv)-1].IsBot)

	b.handleMessage(ctx, command(1, "/chat user2"))
	assert.Contains(t, fs.last().Text, "you: want to grab coffee?")
}

func TestBot_SendToBotPushesReply(t *testing.T) {
	ctx := context.Background()
	b, fs, mgr := newTestBot(t)
	b.handleMessage(ctx, command(5, "/login a@b.c"))

	b.handleMessage(ctx, command(5, "/send bot1 hello"))
	mgr.Close()

	texts := fs.texts()
	assert.True(t, strings.HasPrefix(texts[len(texts)-1], "LoveBot: "), texts[len(texts)-1])
	assert.Equal(t, int64(5), fs.last().ChatID)
}

func TestBot_NotifyReplyFallsBackToSenderID(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.NotifyReply(9, models.ChatBot{}, models.Message{SenderID: "bot7", Content: "hi"})
	assert.Equal(t, "bot7: hi", fs.last().Text)
}

func TestBot_WaitCoversDispatchedHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b, fs, mgr := newTestBot(t)

	const users = 5
	for id := int64(1); id <= users; id++ {
		b.dispatch(ctx, command(id, "/login a@b.c"))
	}
	// Cancelling the poll context must not cut accepted handlers short.
	cancel()
	b.Wait()

	texts := fs.texts()
	require.Len(t, texts, users)
	for _, text := range texts {
		assert.Contains(t, text, "Welcome, testuser!")
	}
	for id := int64(1); id <= users; id++ {
		sess, err := mgr.Get(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, sess.Auth.Current())
	}
}

func TestBot_Profile(t *testing.T) {
	ctx := context.Background()
	b, fs, mgr := newTestBot(t)
	b.handleMessage(ctx, command(1, "/signup alice alice@example.com pw"))

	b.handleMessage(ctx, command(1, "/profile interests hiking, jazz"))
	assert.Equal(t, tgbotapi.ModeMarkdownV2, fs.last().ParseMode)

	b.handleMessage(ctx, command(1, "/profile age -3"))
	assert.Contains(t, fs.last().Text, "age must be a positive integer")

	b.handleMessage(ctx, command(1, "/profile shoe 42"))
	assert.Equal(t, `unknown field "shoe"`, fs.last().Text)

	sess, _ := mgr.Get(ctx, 1)
	assert.Equal(t, []string{"hiking", "jazz"}, sess.Auth.Current().Interests)
	assert.Zero(t, sess.Auth.Current().Age)
}

func TestBot_DiscoverLikeMatch(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestBot(t, discover.WithChance(func() float64 { return 1 }))
	b.handleMessage(ctx, command(1, "/login a@b.c"))

	b.handleMessage(ctx, command(1, "/like"))
	texts := fs.texts()
	assert.Contains(t, texts[len(texts)-2], "It's a match!")
	assert.Contains(t, texts[len(texts)-1], "Alex")

	b.handleMessage(ctx, command(1, "/matches"))
	assert.Contains(t, fs.last().Text, "Emma (user1)")
}

func TestBot_Logout(t *testing.T) {
	ctx := context.Background()
	b, fs, mgr := newTestBot(t)
	b.handleMessage(ctx, command(1, "/login a@b.c"))
	b.handleMessage(ctx, command(1, "/logout"))

	assert.Equal(t, "You are logged out. See you soon!", fs.last().Text)
	sess, _ := mgr.Get(ctx, 1)
	assert.Nil(t, sess.Auth.Current())
}

func TestBot_UnknownAndPlainText(t *testing.T) {
	b, fs, _ := newTestBot(t)
	b.handleMessage(context.Background(), command(1, "/dance"))
	assert.Contains(t, fs.last().Text, "Unknown command")

	b.handleMessage(context.Background(), &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1},
		Text: "hello?",
	})
	assert.Contains(t, fs.last().Text, "/send")
}

func TestParseProfileUpdate(t *testing.T) {
	u, err := parseProfileUpdate("Bio", "Loves dogs")
	require.NoError(t, err)
	merged := u.Apply(&models.User{ID: "1", Bio: "old"})
	assert.Equal(t, "Loves dogs", merged.Bio)

	_, err = parseProfileUpdate("age", "old")
	assert.Error(t, err)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\#new\_york\!`, escapeMarkdown("#new_york!"))
}
