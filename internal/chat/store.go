// Package chat holds the conversation store: per-counterparty message lists
// persisted under the "messages" key, and the delayed bot auto-reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/replier"
	"github.com/xaenox/heartmatch/internal/storage"
)

const (
	DefaultReplyDelay  = time.Second
	DefaultRecentLimit = 5

	replyTimeout = 30 * time.Second
)

type Store struct {
	mu          sync.Mutex
	kv          storage.Storage
	logger      *zap.Logger
	replier     replier.Replier
	replyDelay  time.Duration
	recentLimit int
	now         func() time.Time
	newID       func() string
	onReply     func(models.ChatBot, models.Message)

	bots   []models.ChatBot
	humans []models.User

	ownerID  string
	messages models.Conversations

	pending sync.WaitGroup
}

type Option func(*Store)

func WithReplyDelay(d time.Duration) Option {
	return func(s *Store) { s.replyDelay = d }
}

func WithRecentLimit(n int) Option {
	return func(s *Store) { s.recentLimit = n }
}

func WithReplier(r replier.Replier) Option {
	return func(s *Store) { s.replier = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithReplyHook registers fn to run after each bot reply has been stored.
// fn receives the replying bot as listed in the roster.
func WithReplyHook(fn func(models.ChatBot, models.Message)) Option {
	return func(s *Store) { s.onReply = fn }
}

func New(kv storage.Storage, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kv:          kv,
		logger:      logger,
		replier:     replier.NewCannedReplier(),
		replyDelay:  DefaultReplyDelay,
		recentLimit: DefaultRecentLimit,
		now:         time.Now,
		newID:       func() string { return "msg-" + uuid.NewString() },
		bots:        DefaultBots(),
		humans:      DefaultHumans(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted conversations for me, or seeds and persists a
// fresh set when none are stored. Repeated calls for the same user are no-ops.
func (s *Store) Init(ctx context.Context, me *models.User) error {
	if me == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx, me)
}

func (s *Store) initLocked(ctx context.Context, me *models.User) error {
	if s.ownerID == me.ID && s.messages != nil {
		return nil
	}

	var convs models.Conversations
	err := storage.GetJSON(ctx, s.kv, storage.KeyMessages, &convs)
	switch {
	case err == nil:
		if convs == nil {
			convs = make(models.Conversations)
		}
		s.logger.Debug("Loaded persisted conversations",
			zap.String("user_id", me.ID),
			zap.Int("conversations", len(convs)))
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrMalformed):
		if errors.Is(err, storage.ErrMalformed) {
			s.logger.Warn("Discarding malformed conversations", zap.Error(err))
		}
		convs = s.seedConversations(me)
		if err := storage.SetJSON(ctx, s.kv, storage.KeyMessages, convs); err != nil {
			return fmt.Errorf("persist seed conversations: %w", err)
		}
		s.logger.Info("Seeded conversations", zap.String("user_id", me.ID))
	default:
		return fmt.Errorf("load conversations: %w", err)
	}

	s.ownerID = me.ID
	s.messages = convs
	return nil
}

// Conversation returns a copy of the messages exchanged with counterpartyID.
func (s *Store) Conversation(counterpartyID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message{}, s.messages[counterpartyID]...)
}

// SendMessage appends a message from me to counterpartyID and persists the
// mapping. Blank text, a nil user and a counterparty equal to me are ignored.
// When toBot is set, one bot reply is scheduled after the reply delay; it is
// never cancelled.
func (s *Store) SendMessage(ctx context.Context, me *models.User, counterpartyID, text string, toBot bool) error {
	if me == nil || counterpartyID == me.ID || strings.TrimSpace(text) == "" {
		return nil
	}

	msg := models.Message{
		SenderID:   me.ID,
		ReceiverID: counterpartyID,
		Content:    text,
		IsBot:      toBot,
	}
	if err := s.appendMessage(ctx, me, counterpartyID, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if toBot {
		s.scheduleReply(me.ID, counterpartyID)
	}
	return nil
}

func (s *Store) appendMessage(ctx context.Context, me *models.User, counterpartyID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx, me); err != nil {
		return err
	}
	msg.ID = s.newID()
	msg.Timestamp = s.now()
	s.messages[counterpartyID] = append(s.messages[counterpartyID], msg)
	return storage.SetJSON(ctx, s.kv, storage.KeyMessages, s.messages)
}

func (s *Store) scheduleReply(ownerID, botID string) {
	s.pending.Add(1)
	time.AfterFunc(s.replyDelay, func() {
		defer s.pending.Done()
		s.deliverReply(ownerID, botID)
	})
}

func (s *Store) deliverReply(ownerID, botID string) {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	bot := s.botByID(botID)
	text := s.replier.Reply(ctx, bot, s.Conversation(botID))

	s.mu.Lock()
	if s.ownerID != ownerID {
		s.mu.Unlock()
		s.logger.Info("Dropping bot reply for ended session",
			zap.String("user_id", ownerID),
			zap.String("bot_id", botID))
		return
	}
	reply := models.Message{
		ID:         s.newID(),
		SenderID:   botID,
		ReceiverID: ownerID,
		Content:    text,
		Timestamp:  s.now(),
		IsBot:      true,
	}
	// Live mapping, not a snapshot: sends made during the delay are kept.
	s.messages[botID] = append(s.messages[botID], reply)
	err := storage.SetJSON(ctx, s.kv, storage.KeyMessages, s.messages)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to persist bot reply",
			zap.Error(err),
			zap.String("bot_id", botID),
			zap.String("message_id", reply.ID))
	}
	if s.onReply != nil {
		s.onReply(bot, reply)
	}
}

func (s *Store) botByID(id string) models.ChatBot {
	for _, b := range s.bots {
		if b.ID == id {
			return b
		}
	}
	return models.ChatBot{ID: id, Name: id}
}

// IsBot reports whether id belongs to the bot roster.
func (s *Store) IsBot(id string) bool {
	for _, b := range s.bots {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Bots() []models.ChatBot {
	return append([]models.ChatBot(nil), s.bots...)
}

func (s *Store) Humans() []models.User {
	out := make([]models.User, len(s.humans))
	for i := range s.humans {
		out[i] = *s.humans[i].Clone()
	}
	return out
}

// RecentChats lists the first counterparties of the human roster followed by
// the bot roster, up to the recent limit.
func (s *Store) RecentChats() []models.Counterparty {
	all := make([]models.Counterparty, 0, len(s.humans)+len(s.bots))
	for _, h := range s.humans {
		all = append(all, models.CounterpartyFromUser(h))
	}
	for _, b := range s.bots {
		all = append(all, models.CounterpartyFromBot(b))
	}
	if len(all) > s.recentLimit {
		all = all[:s.recentLimit]
	}
	return all
}

// Reset drops in-memory conversations when a session ends. Replies already
// scheduled still fire but are discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = ""
	s.messages = nil
}

// Wait blocks until every scheduled bot reply has been delivered.
func (s *Store) Wait() {
	s.pending.Wait()
}
