package flow

import "sync"

// Sessions is the per-user session registry. The transport serializes
// delivery per chat, so each individual session is effectively
// single-writer; the lock only guards the map against concurrent users.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*Session)}
}

// Snapshot returns a copy of the user's session, creating an idle one on
// first interaction. The machine mutates the copy and commits it back, which
// keeps failed actions from leaking partial state.
func (s *Sessions) Snapshot(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[userID]; ok {
		return *sess
	}
	return Session{State: StateIdle}
}

// Commit stores the session for the user.
func (s *Sessions) Commit(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = &sess
}

// State returns the user's current state without creating a session.
func (s *Sessions) State(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// InProgress reports whether the user is mid-conversation, which routes
// plain text and media into the machine instead of the command fallbacks.
func (s *Sessions) InProgress(userID int64) bool {
	return s.State(userID) != StateIdle
}

// Clear removes the user's session entirely.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
