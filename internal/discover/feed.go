// Package discover implements the swipe feed: like or pass on one profile at
// a time, with a simulated chance of a match on every like.
package discover

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
)

// matchThreshold: a like matches when the drawn chance exceeds it.
const matchThreshold = 0.5

type Feed struct {
	mu       sync.Mutex
	profiles []models.User
	index    int
	likes    []models.Like
	matches  []models.Match
	matched  []models.User
	chance   func() float64
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Feed)

// WithChance replaces the random source used to decide matches.
func WithChance(fn func() float64) Option {
	return func(f *Feed) { f.chance = fn }
}

func WithProfiles(profiles []models.User) Option {
	return func(f *Feed) { f.profiles = profiles }
}

func New(logger *zap.Logger, opts ...Option) *Feed {
	f := &Feed{
		profiles: DefaultProfiles(),
		chance:   rand.Float64,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Current returns the profile under the cursor.
func (f *Feed) Current() (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.profiles) == 0 {
		return models.User{}, false
	}
	return *f.profiles[f.index].Clone(), true
}

// Like records a like on the current profile from me and advances. The
// returned profile is non-nil when the like turned into a match.
func (f *Feed) Like(me *models.User) *models.User {
	if me == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.profiles) == 0 {
		return nil
	}

	target := f.profiles[f.index]
	now := f.now()
	f.likes = append(f.likes, models.Like{
		ID:          uuid.NewString(),
		UserID:      me.ID,
		LikedUserID: target.ID,
		CreatedAt:   now,
	})

	var matched *models.User
	if f.chance() > matchThreshold {
		f.matches = append(f.matches, models.Match{
			ID:        uuid.NewString(),
			User1ID:   me.ID,
			User2ID:   target.ID,
			CreatedAt: now,
		})
		f.matched = append(f.matched, target)
		matched = target.Clone()
		f.logger.Info("New match", zap.String("user_id", me.ID), zap.String("match_id", target.ID))
	}

	f.advance()
	return matched
}

// Pass skips the current profile.
func (f *Feed) Pass() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.profiles) > 0 {
		f.advance()
	}
}

// advance wraps back to the first profile after the last one.
func (f *Feed) advance() {
	f.index = (f.index + 1) % len(f.profiles)
}

func (f *Feed) Likes() []models.Like {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Like(nil), f.likes...)
}

func (f *Feed) Matches() []models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Match(nil), f.matches...)
}

// MatchedProfiles returns the profiles behind Matches, oldest first.
func (f *Feed) MatchedProfiles() []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, len(f.matched))
	for i := range f.matched {
		out[i] = *f.matched[i].Clone()
	}
	return out
}

func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.likes = nil
	f.matches = nil
	f.matched = nil
}
