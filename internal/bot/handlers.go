package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/session"
)

const conversationTail = 20

func (b *Bot) handleLogin(ctx context.Context, sess *session.Session, message *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.sendMessage(message.Chat.ID, "Usage: /login <email> <password>")
		return
	}
	password := ""
	if len(args) > 1 {
		password = args[1]
	}

	user, err := sess.Auth.Login(ctx, args[0], password)
	if err != nil {
		b.logger.Error("Login failed", zap.Error(err), zap.Int64("session_id", sess.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, login failed. Please try again.")
		return
	}
	b.afterAuth(ctx, sess, message.Chat.ID, user)
}

func (b *Bot) handleSignup(ctx context.Context, sess *session.Session, message *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.sendMessage(message.Chat.ID, "Usage: /signup <username> <email> <password>")
		return
	}
	password := ""
	if len(args) > 2 {
		password = args[2]
	}

	user, err := sess.Auth.Signup(ctx, args[0], args[1], password)
	if err != nil {
		b.logger.Error("Signup failed", zap.Error(err), zap.Int64("session_id", sess.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, signup failed. Please try again.")
		return
	}
	b.afterAuth(ctx, sess, message.Chat.ID, user)
}

func (b *Bot) afterAuth(ctx context.Context, sess *session.Session, chatID int64, user *models.User) {
	if err := sess.Init(ctx); err != nil {
		b.logger.Error("Failed to load conversations",
			zap.Error(err),
			zap.String("user_id", user.ID))
		b.sendErrorMessage(chatID, "Logged in, but your conversations could not be loaded.")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Welcome, %s! Try /discover or /chats.", user.Username))
}

func (b *Bot) handleLogout(ctx context.Context, sess *session.Session, message *tgbotapi.Message) {
	if err := sess.Logout(ctx); err != nil {
		b.logger.Error("Logout failed", zap.Error(err), zap.Int64("session_id", sess.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, logout failed. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "You are logged out. See you soon!")
}

func (b *Bot) handleMe(sess *session.Session, message *tgbotapi.Message) {
	me := b.requireUser(sess, message.Chat.ID)
	if me == nil {
		return
	}
	b.sendMarkdown(message.Chat.ID, formatProfile(*me))
}

func (b *Bot) handleProfile(ctx context.Context, sess *session.Session, message *tgbotapi.Message, args []string) {
	if b.requireUser(sess, message.Chat.ID) == nil {
		return
	}
	if len(args) < 2 {
		b.sendMessage(message.Chat.ID, "Usage: /profile <field> <value>")
		return
	}

	update, err := parseProfileUpdate(args[0], strings.Join(args[1:], " "))
	if err != nil {
		b.sendMessage(message.Chat.ID, err.Error())
		return
	}

	user, err := sess.Auth.UpdateProfile(ctx, update)
	if err != nil {
		b.logger.Error("Failed to update profile", zap.Error(err), zap.Int64("session_id", sess.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, your profile could not be updated: "+err.Error())
		return
	}
	if user == nil {
		b.sendMessage(message.Chat.ID, "Please /login or /signup first.")
		return
	}
	b.sendMarkdown(message.Chat.ID, formatProfile(*user))
}

func parseProfileUpdate(field, value string) (models.ProfileUpdate, error) {
	var update models.ProfileUpdate
	switch strings.ToLower(field) {
	case "username":
		update.Username = &value
	case "email":
		update.Email = &value
	case "bio":
		update.Bio = &value
	case "location":
		update.Location = &value
	case "picture":
		update.ProfilePicture = &value
	case "age":
		age, err := strconv.Atoi(value)
		if err != nil {
			return update, fmt.Errorf("age must be a number")
		}
		update.Age = &age
	case "interests":
		interests := []string{}
		for _, part := range strings.Split(value, ",") {
			if tag := strings.TrimSpace(part); tag != "" {
				interests = append(interests, tag)
			}
		}
		update.Interests = interests
	default:
		return update, fmt.Errorf("unknown field %q", field)
	}
	return update, nil
}

func (b *Bot) handleBots(sess *session.Session, message *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString("Dating bots:\n")
	for _, bot := range sess.Chat.Bots() {
		fmt.Fprintf(&sb, "%s - %s: %s\n", bot.ID, bot.Name, bot.Bio)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleChats(sess *session.Session, message *tgbotapi.Message) {
	if b.requireUser(sess, message.Chat.ID) == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent chats:\n")
	for _, cp := range sess.Chat.RecentChats() {
		kind := "👤"
		if cp.IsBot {
			kind = "🤖"
		}
		line := fmt.Sprintf("%s %s (%s)", kind, cp.Name, cp.ID)
		if conv := sess.Chat.Conversation(cp.ID); len(conv) > 0 {
			line += ": " + conv[len(conv)-1].Content
		}
		sb.WriteString(line + "\n")
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleChat(sess *session.Session, message *tgbotapi.Message, args []string) {
	me := b.requireUser(sess, message.Chat.ID)
	if me == nil {
		return
	}
	if len(args) != 1 {
		b.sendMessage(message.Chat.ID, "Usage: /chat <id>")
		return
	}

	conv := sess.Chat.Conversation(args[0])
	if len(conv) == 0 {
		b.sendMessage(message.Chat.ID, "No messages yet. Say hi with /send "+args[0]+" <text>")
		return
	}
	if len(conv) > conversationTail {
		conv = conv[len(conv)-conversationTail:]
	}

	var sb strings.Builder
	for _, m := range conv {
		author := m.SenderID
		if m.SenderID == me.ID {
			author = "you"
		}
		fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Timestamp.Format("Jan 2 15:04"), author, m.Content)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleSend(ctx context.Context, sess *session.Session, message *tgbotapi.Message, args []string) {
	me := b.requireUser(sess, message.Chat.ID)
	if me == nil {
		return
	}
	if len(args) < 2 {
		b.sendMessage(message.Chat.ID, "Usage: /send <id> <text>")
		return
	}

	counterpartyID := args[0]
	text := strings.Join(args[1:], " ")
	toBot := sess.Chat.IsBot(counterpartyID)
	if err := sess.Chat.SendMessage(ctx, me, counterpartyID, text, toBot); err != nil {
		b.logger.Error("Failed to save message",
			zap.Error(err),
			zap.String("user_id", me.ID),
			zap.String("counterparty_id", counterpartyID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't send your message. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "Sent ✓")
}

func (b *Bot) handleDiscover(sess *session.Session, message *tgbotapi.Message) {
	if b.requireUser(sess, message.Chat.ID) == nil {
		return
	}
	profile, ok := sess.Feed.Current()
	if !ok {
		b.sendMessage(message.Chat.ID, "No profiles to show right now.")
		return
	}
	b.sendMarkdown(message.Chat.ID, formatProfile(profile)+"\n\n/like or /pass")
}

func (b *Bot) handleLike(sess *session.Session, message *tgbotapi.Message) {
	me := b.requireUser(sess, message.Chat.ID)
	if me == nil {
		return
	}
	if matched := sess.Feed.Like(me); matched != nil {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("It's a match! 💘 You and %s liked each other. Say hi with /send %s <text>",
			matched.Username, matched.ID))
	}
	b.handleDiscover(sess, message)
}

func (b *Bot) handlePass(sess *session.Session, message *tgbotapi.Message) {
	if b.requireUser(sess, message.Chat.ID) == nil {
		return
	}
	sess.Feed.Pass()
	b.handleDiscover(sess, message)
}

func (b *Bot) handleMatches(sess *session.Session, message *tgbotapi.Message) {
	if b.requireUser(sess, message.Chat.ID) == nil {
		return
	}
	matched := sess.Feed.MatchedProfiles()
	if len(matched) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any matches yet. Keep swiping with /discover!")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your matches:\n")
	for _, u := range matched {
		fmt.Fprintf(&sb, "%s (%s), %d, %s\n", u.Username, u.ID, u.Age, u.Location)
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func formatProfile(u models.User) string {
	var sb strings.Builder
	title := u.Username
	if u.Age > 0 {
		title = fmt.Sprintf("%s, %d", u.Username, u.Age)
	}
	fmt.Fprintf(&sb, "*%s*\n", escapeMarkdown(title))
	if u.Location != "" {
		fmt.Fprintf(&sb, "📍 %s\n", escapeMarkdown(u.Location))
	}
	if u.Bio != "" {
		fmt.Fprintf(&sb, "_%s_\n", escapeMarkdown(u.Bio))
	}
	if len(u.Interests) > 0 {
		tags := make([]string, len(u.Interests))
		for i, tag := range u.Interests {
			tags[i] = escapeMarkdown("#" + strings.ReplaceAll(tag, " ", "_"))
		}
		fmt.Fprintf(&sb, "%s\n", strings.Join(tags, " "))
	}
	return strings.TrimRight(sb.String(), "\n")
}
