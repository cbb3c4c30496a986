package storage

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// SessionStore keeps one value per page session, keyed by session ID
type SessionStore[T any] struct {
	sessions map[string]*entry[T]
	mu       sync.RWMutex
	now      func() time.Time
}

func New[T any]() *SessionStore[T] {
	return &SessionStore[T]{
		sessions: make(map[string]*entry[T]),
		now:      time.Now,
	}
}

// Get returns the session and marks it as recently used
func (s *SessionStore[T]) Get(sessionID string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.sessions[sessionID]
	if !exists {
		var zero T
		return zero, false
	}
	e.lastSeen = s.now()
	return e.value, true
}

func (s *SessionStore[T]) Set(sessionID string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &entry[T]{value: value, lastSeen: s.now()}
}

func (s *SessionStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were removed
func (s *SessionStore[T]) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
