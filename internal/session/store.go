// Package session provides the in-memory store that holds uploaded archive
// bytes under generated identifiers, bounded by a time-to-live. All data is
// process-lifetime only; nothing is persisted across restarts.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// CleanupInterval is the interval between background expiry sweeps.
	CleanupInterval = 5 * time.Minute
)

// Session associates a generated identifier with one uploaded archive's raw
// bytes and its display-path mapping. Sessions are immutable after creation.
type Session struct {
	// ID is the opaque session identifier.
	ID string
	// Archive is the raw uploaded ZIP container.
	Archive []byte
	// PathMap maps display paths to internal archive entry paths.
	PathMap map[string]string
	// ExpiresAt is the absolute expiry timestamp.
	ExpiresAt time.Time
}

// Store is a concurrency-safe in-memory session store with TTL support.
// Expired sessions behave as absent even before a sweep removes them.
type Store struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	logger        *logrus.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	now           func() time.Time
}

// NewStore creates a new in-memory session store with background TTL cleanup.
func NewStore(logger *logrus.Logger) *Store {
	store := &Store{
		sessions:      make(map[string]*Session),
		logger:        logger,
		cleanupTicker: time.NewTicker(CleanupInterval),
		stopCleanup:   make(chan struct{}),
		now:           time.Now,
	}

	go store.cleanupExpiredSessions()

	logger.Info("In-memory session store initialized with TTL cleanup")
	return store
}

// Create stores a new session for the given archive and path mapping,
// returning a fresh unguessable identifier and the absolute expiry time.
func (s *Store) Create(archive []byte, pathMap map[string]string, ttl time.Duration) (string, time.Time) {
	id := uuid.NewString()
	expiresAt := s.now().Add(ttl)

	s.mu.Lock()
	s.sessions[id] = &Session{
		ID:        id,
		Archive:   archive,
		PathMap:   pathMap,
		ExpiresAt: expiresAt,
	}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"session_id":    id,
		"archive_bytes": len(archive),
		"files":         len(pathMap),
	}).Debug("Session stored in memory")

	return id, expiresAt
}

// Get retrieves a session by identifier. A session whose expiry has passed
// is reported as absent even if the sweeper has not removed it yet.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists || !s.now().Before(sess.ExpiresAt) {
		return nil, false
	}

	return sess, true
}

// Sweep removes every session whose expiry is at or before now, returning
// the number of sessions removed. Safe to call concurrently with Create
// and Get.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			expired++
		}
	}

	if expired > 0 {
		s.logger.WithField("expired_sessions", expired).Debug("Swept expired sessions from memory")
	}

	return expired
}

// Count returns the number of sessions currently held, including any that
// have expired but not yet been swept.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close shuts down the store and its cleanup goroutine.
func (s *Store) Close() error {
	close(s.stopCleanup)
	s.logger.Info("Session store closed")
	return nil
}

// cleanupExpiredSessions runs periodically to remove expired sessions.
func (s *Store) cleanupExpiredSessions() {
	defer s.cleanupTicker.Stop()

	for {
		select {
		case <-s.cleanupTicker.C:
			s.Sweep(s.now())
		case <-s.stopCleanup:
			return
		}
	}
}
