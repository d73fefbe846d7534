package session

import (
	"sync"
	"time"

	"salon-agent/internal/utils"
)

// Store tracks in-flight call sessions by call id, so state confirmed
// mid-call is still available at teardown even when the caller omits it
// from the teardown payload.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*CallSession
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*CallSession)}
}

// Track returns the session for the call id, creating it on first use.
func (s *Store) Track(callID string) *CallSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callID]
	if !ok {
		sess = &CallSession{
			callID:    callID,
			startedAt: time.Now().In(utils.Location()),
		}
		s.sessions[callID] = sess
	}

	return sess
}

// Lookup returns the tracked session without creating one.
func (s *Store) Lookup(callID string) (*CallSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callID]

	return sess, ok
}

// Remove drops the session at call teardown.
func (s *Store) Remove(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, callID)
}
