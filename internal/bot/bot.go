package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/session"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is the Telegram front end. Each Telegram user gets its own session;
// replies are sent to the private chat whose id equals the user id.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	sessions *session.Manager
	logger   *zap.Logger

	handlers sync.WaitGroup
}

func New(token string, sessions *session.Manager, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:      api,
		sender:   api,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Start polls for updates until ctx is cancelled. Handlers still running
// when it returns are waited for with Wait.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch handles message on its own goroutine. Handlers outlive ctx
// cancellation so an accepted update is always answered.
func (b *Bot) dispatch(ctx context.Context, message *tgbotapi.Message) {
	b.handlers.Add(1)
	go func() {
		defer b.handlers.Done()
		b.handleMessage(context.WithoutCancel(ctx), message)
	}()
}

// Wait blocks until every dispatched handler has returned.
func (b *Bot) Wait() {
	b.handlers.Wait()
}

// NotifyReply pushes a stored bot reply to the session's chat.
func (b *Bot) NotifyReply(sessionID int64, from models.ChatBot, msg models.Message) {
	name := from.Name
	if name == "" {
		name = msg.SenderID
	}
	b.sendMessage(sessionID, fmt.Sprintf("%s: %s", name, msg.Content))
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	sess, err := b.sessions.Get(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("Failed to open session",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, something went wrong. Please try again.")
		return
	}

	if !message.IsCommand() {
		b.sendMessage(message.Chat.ID, "Use /send <id> <text> to message someone, or /help.")
		return
	}

	b.handleCommand(ctx, sess, message)
}

func (b *Bot) handleCommand(ctx context.Context, sess *session.Session, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "login":
		b.handleLogin(ctx, sess, message, args)
	case "signup":
		b.handleSignup(ctx, sess, message, args)
	case "logout":
		b.handleLogout(ctx, sess, message)
	case "me":
		b.handleMe(sess, message)
	case "profile":
		b.handleProfile(ctx, sess, message, args)
	case "bots":
		b.handleBots(sess, message)
	case "chats":
		b.handleChats(sess, message)
	case "chat":
		b.handleChat(sess, message, args)
	case "send":
		b.handleSend(ctx, sess, message, args)
	case "discover":
		b.handleDiscover(sess, message)
	case "like":
		b.handleLike(sess, message)
	case "pass":
		b.handlePass(sess, message)
	case "matches":
		b.handleMatches(sess, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to HeartMatch! 💘
Swipe through profiles, chat with your matches and our dating bots.

Use /login or /signup to get started, and /help to see all commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/login <email> <password> - Log in
/signup <username> <email> <password> - Create an account
/logout - Log out
/me - Show your profile
/profile <field> <value> - Update username, email, bio, age, location, interests or picture
/bots - List dating bots
/chats - Recent chats
/chat <id> - Show a conversation
/send <id> <text> - Send a message
/discover - Show the next profile
/like - Like the current profile
/pass - Skip the current profile
/matches - Show your matches`

	b.sendMessage(message.Chat.ID, help)
}

// requireUser reports the current user, telling the chat to log in when there is none.
func (b *Bot) requireUser(sess *session.Session, chatID int64) *models.User {
	me := sess.Auth.Current()
	if me == nil {
		b.sendMessage(chatID, "Please /login or /signup first.")
	}
	return me
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send markdown message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// escapeMarkdown escapes special characters for MarkdownV2.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
