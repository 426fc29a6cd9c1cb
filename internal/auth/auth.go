// Package auth holds the identity store: the single current user of a
// session and its persisted mirror under the "user" key.
//
// Credentials are never verified. Login and Signup are mock flows that
// stand in for a remote identity service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	kv      storage.Storage
	logger  *zap.Logger
	now     func() time.Time
	current *models.User
	loading bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates the store and performs the initial load of the persisted user.
// Ready is closed once that load is finished, whatever its outcome.
func New(ctx context.Context, kv storage.Storage, logger *zap.Logger) *Store {
	s := &Store{
		kv:      kv,
		logger:  logger,
		now:     time.Now,
		loading: true,
		ready:   make(chan struct{}),
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	defer s.markReady()

	var user models.User
	err := storage.GetJSON(ctx, s.kv, storage.KeyUser, &user)
	switch {
	case err == nil:
		s.mu.Lock()
		s.current = &user
		s.mu.Unlock()
		s.logger.Debug("Restored persisted user", zap.String("user_id", user.ID))
	case errors.Is(err, storage.ErrNotFound):
	case errors.Is(err, storage.ErrMalformed):
		s.logger.Warn("Ignoring malformed persisted user", zap.Error(err))
	default:
		s.logger.Error("Failed to load persisted user", zap.Error(err))
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}

// Ready is closed after the initial load completes.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Current returns a copy of the current user, or nil when logged out.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Login binds a fixed placeholder profile to email. The password is ignored.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	user := &models.User{
		ID:             "1",
		Username:       "testuser",
		Email:          email,
		ProfilePicture: "https://images.pexels.com/photos/614810/pexels-photo-614810.jpeg",
		Bio:            "I love hiking and photography",
		Age:            28,
		Location:       "New York",
		Interests:      []string{"hiking", "photography", "travel"},
		CreatedAt:      s.now(),
	}
	if err := s.become(ctx, user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("email", email))
	return user.Clone(), nil
}

func (s *Store) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	now := s.now()
	user := &models.User{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Username:  username,
		Email:     email,
		CreatedAt: now,
	}
	if err := s.become(ctx, user); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	s.logger.Info("User signed up", zap.String("user_id", user.ID), zap.String("username", username))
	return user.Clone(), nil
}

func (s *Store) become(ctx context.Context, user *models.User) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := storage.SetJSON(ctx, s.kv, storage.KeyUser, user); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Logout clears both the persisted record and the in-memory user.
// Calling it while logged out is harmless.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.KeyUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if s.current != nil {
		s.logger.Info("User logged out", zap.String("user_id", s.current.ID))
	}
	s.current = nil
	return nil
}

// UpdateProfile merges update into the current user and persists the result.
// It returns (nil, nil) when nobody is logged in.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	merged := update.Apply(s.current)
	if err := storage.SetJSON(ctx, s.kv, storage.KeyUser, merged); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.current = merged
	return merged.Clone(), nil
}
