package preview

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps preview sessions in process memory. Suitable for local
// mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryStore creates an empty in-memory preview store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*Session)}
}

// Put stores the session, replacing any active session for the user.
func (s *MemoryStore) Put(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
	return nil
}

// Get returns the active session, or ErrNoActivePreview.
func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActivePreview
	}
	return session, nil
}

// Delete discards the active session.
func (s *MemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
