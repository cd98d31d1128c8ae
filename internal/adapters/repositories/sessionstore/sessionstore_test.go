package sessionstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

func storedSession(key string, lastUsed time.Time) *entities.Session {
	return &entities.Session{
		Key:            key,
		ConversationID: "conv-" + key,
		CreatedAt:      lastUsed,
		LastUsed:       lastUsed,
		Valid:          true,
	}
}

func TestSessionStore(t *testing.T) {
	t.Run("set и get возвращают ту же сессию", testStoreSetGet)
	t.Run("delete сообщает о наличии", testStoreDelete)
	t.Run("oldest выбирает самую давнюю по использованию", testStoreOldest)
}

func testStoreSetGet(t *testing.T) {
	store := NewSessionStore()
	session := storedSession("a", time.Now())

	store.Set("a", session)

	got, found := store.Get("a")
	require.True(t, found)
	require.Same(t, session, got)

	_, found = store.Get("b")
	require.False(t, found)
	require.Equal(t, 1, store.Len())
	require.Len(t, store.List(), 1)
}

func testStoreDelete(t *testing.T) {
	store := NewSessionStore()
	store.Set("a", storedSession("a", time.Now()))

	require.True(t, store.Delete("a"))
	require.False(t, store.Delete("a"))
	require.Equal(t, 0, store.Len())
}

func testStoreOldest(t *testing.T) {
	store := NewSessionStore()

	_, found := store.Oldest()
	require.False(t, found)

	now := time.Now()
	store.Set("fresh", storedSession("fresh", now))
	store.Set("stale", storedSession("stale", now.Add(-time.Hour)))
	store.Set("middle", storedSession("middle", now.Add(-time.Minute)))

	oldest, found := store.Oldest()
	require.True(t, found)
	require.Equal(t, "stale", oldest.Key)
}
