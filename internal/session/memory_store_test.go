package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ws-gateway/internal/identity"
)

func testSession(connectionID, subject string, ttl time.Duration) Session {
	now := time.Now()
	return Session{
		ConnectionID: connectionID,
		Identity:     identity.Identity{Subject: subject},
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func TestMemoryStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, testSession("conn-1", "alice", time.Minute)))

	got, err := store.Get(ctx, "conn-1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Identity.Subject)
	require.Equal(t, "conn-1", got.ConnectionID)
}

func TestMemoryStore_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := testSession("conn-1", "alice", time.Minute)

	require.NoError(t, store.Put(ctx, sess))
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "conn-1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Identity.Subject)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, testSession("conn-1", "alice", time.Minute)))
	require.NoError(t, store.Put(ctx, testSession("conn-1", "bob", time.Minute)))

	got, err := store.Get(ctx, "conn-1")
	require.NoError(t, err)
	require.Equal(t, "bob", got.Identity.Subject)
}

func TestMemoryStore_GetUnknownHandle(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, testSession("conn-1", "alice", time.Minute)))
	require.NoError(t, store.Remove(ctx, "conn-1"))

	_, err := store.Get(ctx, "conn-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Absent handle is not an error.
	require.NoError(t, store.Remove(ctx, "conn-1"))
	require.NoError(t, store.Remove(ctx, "never-existed"))
}

func TestMemoryStore_ExpiredBindingIsGone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, testSession("conn-1", "alice", time.Minute)))

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := store.Get(ctx, "conn-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RejectsPastExpiry(t *testing.T) {
	store := NewMemoryStore()

	err := store.Put(context.Background(), testSession("conn-1", "alice", -time.Minute))
	require.Error(t, err)
}

func TestMemoryStore_RejectsIncompleteBinding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.Error(t, store.Put(ctx, testSession("", "alice", time.Minute)))
	require.Error(t, store.Put(ctx, testSession("conn-1", "", time.Minute)))
}
