// Package ratelimit implements a per-key sliding-window rate limiter.
// Each key tracks the timestamps of its admitted requests within the
// trailing window; a request is admitted only while fewer than the quota
// of timestamps remain inside the window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks per-key admission timestamps and answers admit/reject
// decisions against a quota and trailing window. It is safe for concurrent
// use; the prune-check-append sequence for a key is atomic with respect to
// all other callers.
type Limiter struct {
	mu           sync.Mutex
	admissions   map[string][]time.Time
	cleanupEvery time.Duration
	lastCleanup  time.Time
	now          func() time.Time
}

// New creates a limiter whose idle-key cleanup runs at most once per
// cleanupInterval, opportunistically during Allow calls.
func New(cleanupInterval time.Duration) *Limiter {
	return NewWithClock(cleanupInterval, time.Now)
}

// NewWithClock creates a limiter with an injected clock. Tests use it to
// drive the window deterministically.
func NewWithClock(cleanupInterval time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		admissions:   make(map[string][]time.Time),
		cleanupEvery: cleanupInterval,
		now:          now,
	}
}

// Allow reports whether the caller identified by key may proceed under the
// given quota and window. Admitted calls record their timestamp; rejected
// calls record nothing. Quota exhaustion is a normal outcome, not a fault.
func (l *Limiter) Allow(key string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	l.maybeCleanup(now, cutoff)

	timestamps := l.admissions[key]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxRequests {
		l.admissions[key] = kept
		return false
	}

	l.admissions[key] = append(kept, now)
	return true
}

// Keys returns the number of client keys currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.admissions)
}

// maybeCleanup drops keys whose newest admission already precedes the
// current window start. Runs at most once per cleanup interval so one-shot
// clients cannot grow the map without bound. Caller must hold l.mu.
func (l *Limiter) maybeCleanup(now time.Time, cutoff time.Time) {
	if now.Sub(l.lastCleanup) < l.cleanupEvery {
		return
	}
	l.lastCleanup = now

	for key, timestamps := range l.admissions {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(l.admissions, key)
		}
	}
}
