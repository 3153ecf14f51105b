package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Empty(t, sess.Messages)

	msg := NewMessage(RoleUser, "weather in Paris?")
	msg.ToolName = ""
	require.NoError(t, store.Append(ctx, "s1", msg))
	require.NoError(t, store.Append(ctx, "s1", NewMessage(RoleAssistant, "18 degrees")))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "weather in Paris?", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)

	// Reloading the session includes the persisted history.
	sess, err = store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 2)
}

func TestSQLiteStoreGetOrCreateIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "same")
	require.NoError(t, err)
	second, err := store.GetOrCreate(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestSQLiteStoreEvictCascades(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "doomed", NewMessage(RoleUser, "hi")))
	require.NoError(t, store.Evict(ctx, "doomed"))

	_, err := store.History(ctx, "doomed")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, store.Evict(ctx, "doomed"), ErrSessionNotFound)
}

func TestSQLiteStoreHistoryUnknownSession(t *testing.T) {
	store := newTestSQLiteStore(t)
	_, err := store.History(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSQLiteStoreTurnLocks(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.AcquireTurn(ctx, "s"))
	store.ReleaseTurn("s")
	require.NoError(t, store.AcquireTurn(ctx, "s"))
	store.ReleaseTurn("s")
}
