// Package session wires one identity store, conversation store and discovery
// feed per front-end user over a shared key-value backend.
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xaenox/heartmatch/internal/auth"
	"github.com/xaenox/heartmatch/internal/chat"
	"github.com/xaenox/heartmatch/internal/discover"
	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/storage"
)

type Session struct {
	ID   int64
	Auth *auth.Store
	Chat *chat.Store
	Feed *discover.Feed
}

// Init prepares the conversation store for whoever is logged in.
func (s *Session) Init(ctx context.Context) error {
	return s.Chat.Init(ctx, s.Auth.Current())
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.Auth.Logout(ctx); err != nil {
		return err
	}
	s.Chat.Reset()
	s.Feed.Reset()
	return nil
}

// ReplyFunc receives bot replies for a session once they are stored.
type ReplyFunc func(sessionID int64, bot models.ChatBot, msg models.Message)

type Manager struct {
	mu          sync.Mutex
	kv          storage.Storage
	logger      *zap.Logger
	chatOptions []chat.Option
	feedOptions []discover.Option
	onReply     ReplyFunc
	sessions    map[int64]*Session
	creating    singleflight.Group
}

func NewManager(kv storage.Storage, logger *zap.Logger, onReply ReplyFunc, chatOptions []chat.Option, feedOptions ...discover.Option) *Manager {
	return &Manager{
		kv:          kv,
		logger:      logger,
		chatOptions: chatOptions,
		feedOptions: feedOptions,
		onReply:     onReply,
		sessions:    make(map[int64]*Session),
	}
}

func (m *Manager) lookup(id int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Get returns the session for id, creating and initialising it on first use.
// Storage I/O runs outside the manager lock; concurrent first calls for the
// same id share one creation.
func (m *Manager) Get(ctx context.Context, id int64) (*Session, error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}

	v, err, _ := m.creating.Do(strconv.FormatInt(id, 10), func() (any, error) {
		if s, ok := m.lookup(id); ok {
			return s, nil
		}
		s, err := m.newSession(ctx, id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) newSession(ctx context.Context, id int64) (*Session, error) {
	kv := storage.Namespace(m.kv, fmt.Sprintf("tg:%d:", id))
	logger := m.logger.With(zap.Int64("session_id", id))

	opts := append([]chat.Option{}, m.chatOptions...)
	if m.onReply != nil {
		opts = append(opts, chat.WithReplyHook(func(bot models.ChatBot, msg models.Message) {
			m.onReply(id, bot, msg)
		}))
	}

	s := &Session{
		ID:   id,
		Auth: auth.New(ctx, kv, logger),
		Chat: chat.New(kv, logger, opts...),
		Feed: discover.New(logger, m.feedOptions...),
	}
	<-s.Auth.Ready()
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("init session %d: %w", id, err)
	}

	logger.Debug("Session created")
	return s, nil
}

// Close waits for every pending bot reply across sessions. Callers must stop
// issuing sends before calling it.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Chat.Wait()
	}
}
