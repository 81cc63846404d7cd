package lookup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTTL is how long an unused session keeps its cache.
const DefaultIdleTTL = 30 * time.Minute

type session struct {
	cache    *Cache
	lastSeen time.Time
}

// Sessions maps browser session IDs to their caches.
type Sessions struct {
	mu         sync.Mutex
	byID       map[string]*session
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewSessions creates an empty registry.
// PRE: none (ttl <= 0 selects DefaultIdleTTL, maxEntries <= 0 selects DefaultMaxEntries)
func NewSessions(ttl time.Duration, maxEntries int) *Sessions {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Sessions{
		byID:       make(map[string]*session),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Create starts a new session and returns its ID and cache.
// POST: the ID is a fresh random UUID
func (s *Sessions) Create() (string, *Cache) {
	id := uuid.NewString()
	c := NewCache(s.maxEntries)
	s.mu.Lock()
	s.byID[id] = &session{cache: c, lastSeen: s.now()}
	s.mu.Unlock()
	return id, c
}

// Get returns the cache for id and marks the session as used.
// POST: ok is false for unknown or expired sessions
func (s *Sessions) Get(id string) (*Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.byID, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess.cache, true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done. onSweep, if non-nil, receives the live session count.
func (s *Sessions) Run(ctx context.Context, interval time.Duration, onSweep func(live int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("lookup_sessions_swept", "removed", n)
			}
			if onSweep != nil {
				onSweep(s.Len())
			}
		}
	}
}
