package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/storage"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv storage.Storage) *Store {
	t.Helper()
	s := New(context.Background(), kv, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestNew_SignalsReadyWithoutUser(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStorage())

	select {
	case <-s.Ready():
	default:
		t.Fatal("store not ready after New")
	}
	assert.False(t, s.Loading())
	assert.Nil(t, s.Current())
}

func TestNew_RestoresPersistedUser(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	first := newTestStore(t, kv)
	_, err := first.Signup(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	second := newTestStore(t, kv)
	require.NotNil(t, second.Current())
	assert.Equal(t, first.Current(), second.Current())
}

func TestNew_MalformedUserTreatedAsAbsent(t *testing.T) {
	kv := storage.NewMemoryStorage()
	require.NoError(t, kv.Set(context.Background(), storage.KeyUser, "{oops"))

	s := newTestStore(t, kv)
	assert.Nil(t, s.Current())
	<-s.Ready()
}

func TestLogin_PlaceholderProfile(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	s := newTestStore(t, kv)

	user, err := s.Login(ctx, "bob@example.com", "ignored")
	require.NoError(t, err)

	assert.Equal(t, "1", user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, 28, user.Age)
	assert.Equal(t, []string{"hiking", "photography", "travel"}, user.Interests)
	assert.Equal(t, user, s.Current())
	assert.False(t, s.Loading())

	var persisted models.User
	require.NoError(t, storage.GetJSON(ctx, kv, storage.KeyUser, &persisted))
	assert.Equal(t, *user, persisted)
}

func TestSignup_MinimalProfile(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStorage())

	user, err := s.Signup(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "1714564800000", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Bio)
	assert.Zero(t, user.Age)
	assert.Empty(t, user.Location)
	assert.Nil(t, user.Interests)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	s := newTestStore(t, kv)
	_, err := s.Login(ctx, "a@b.c", "")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.Nil(t, s.Current())
	_, err = kv.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Idempotent.
	require.NoError(t, s.Logout(ctx))
	assert.Nil(t, s.Current())
}

func TestUpdateProfile_MergesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	s := newTestStore(t, kv)
	before, err := s.Login(ctx, "a@b.c", "")
	require.NoError(t, err)

	after, err := s.UpdateProfile(ctx, models.ProfileUpdate{
		Bio:       strPtr("Coffee first"),
		Age:       intPtr(31),
		Interests: []string{"climbing"},
	})
	require.NoError(t, err)

	want := *before
	want.Bio = "Coffee first"
	want.Age = 31
	want.Interests = []string{"climbing"}
	assert.Equal(t, &want, after)
	assert.Equal(t, &want, s.Current())

	var persisted models.User
	require.NoError(t, storage.GetJSON(ctx, kv, storage.KeyUser, &persisted))
	assert.Equal(t, want, persisted)
}

func TestUpdateProfile_NoCurrentUser(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	s := newTestStore(t, kv)

	user, err := s.UpdateProfile(ctx, models.ProfileUpdate{Bio: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, s.Current())

	// Validation never surfaces while logged out.
	user, err = s.UpdateProfile(ctx, models.ProfileUpdate{Age: intPtr(-1)})
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, s.Current())
	_, err = kv.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateProfile_RejectsNonPositiveAge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStorage())
	before, err := s.Login(ctx, "a@b.c", "")
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, models.ProfileUpdate{Age: intPtr(0)})
	assert.ErrorIs(t, err, models.ErrInvalidAge)
	assert.Equal(t, before, s.Current())
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStorage())
	_, err := s.Login(context.Background(), "a@b.c", "")
	require.NoError(t, err)

	u := s.Current()
	u.Interests[0] = "mutated"
	assert.Equal(t, "hiking", s.Current().Interests[0])
}

type failingStorage struct{ storage.Storage }

func (failingStorage) Set(context.Context, string, string) error { return errors.New("quota exceeded") }

func TestLogin_PersistFailureLeavesNoUser(t *testing.T) {
	s := newTestStore(t, failingStorage{storage.NewMemoryStorage()})

	_, err := s.Login(context.Background(), "a@b.c", "")
	require.Error(t, err)
	assert.Nil(t, s.Current())
	assert.False(t, s.Loading())
}
