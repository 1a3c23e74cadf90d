package session

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := NewStore(log)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	archive := []byte("archive bytes")
	pathMap := map[string]string{"a.txt": "proj/a.txt"}

	id, expiresAt := store.Create(archive, pathMap, time.Minute)
	require.NotEmpty(t, id)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, time.Second)

	sess, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, archive, sess.Archive)
	assert.Equal(t, pathMap, sess.PathMap)
}

func TestGetUnknownID(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("no-such-session")
	assert.False(t, ok)
}

func TestExpiredSessionBehavesAsAbsent(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	id, expiresAt := store.Create([]byte("zip"), nil, 10*time.Second)
	require.Equal(t, base.Add(10*time.Second), expiresAt)

	// Strictly before expiry, the session is retrievable.
	current = expiresAt.Add(-time.Nanosecond)
	_, ok := store.Get(id)
	require.True(t, ok)

	// At expiry, the session is absent even though no sweep has run.
	current = expiresAt
	_, ok = store.Get(id)
	assert.False(t, ok)

	// It never reappears.
	current = expiresAt.Add(time.Hour)
	_, ok = store.Get(id)
	assert.False(t, ok)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store.now = func() time.Time { return current }

	expiredID, _ := store.Create([]byte("old"), nil, time.Second)
	liveID, _ := store.Create([]byte("new"), nil, time.Hour)

	current = base.Add(time.Minute)
	removed := store.Sweep(current)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())

	_, ok := store.Get(expiredID)
	assert.False(t, ok)
	_, ok = store.Get(liveID)
	assert.True(t, ok)
}

func TestConcurrentCreatesYieldUniqueSessions(t *testing.T) {
	const creators = 1000

	store := newTestStore(t)

	ids := make(chan string, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := store.Create([]byte("zip"), nil, time.Minute)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, creators)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate session id %s", id)
		seen[id] = struct{}{}

		_, ok := store.Get(id)
		require.True(t, ok, "session %s was lost", id)
	}

	assert.Len(t, seen, creators)
	assert.Equal(t, creators, store.Count())
}

func TestSweepConcurrentWithCreates(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, _ := store.Create([]byte("zip"), nil, time.Hour)
			_, ok := store.Get(id)
			assert.True(t, ok, "session with future expiry must survive concurrent sweeps")
		}()
		go func() {
			defer wg.Done()
			store.Sweep(time.Now())
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, store.Count())
}
