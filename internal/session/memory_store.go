package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps bindings in process memory with lazy expiry. It backs
// the local stage and unit tests. A multi-worker deployment must use a
// shared backing instead: events routed to another process would not find
// their session here.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, s Session) error {
	if s.ConnectionID == "" || s.Identity.Subject == "" {
		return fmt.Errorf("session: missing connection_id or subject")
	}
	if !s.ExpiresAt.After(m.now()) {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ConnectionID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, connectionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[connectionID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(m.now()) {
		delete(m.sessions, connectionID)
		return nil, ErrNotFound
	}

	return &s, nil
}

func (m *MemoryStore) Remove(ctx context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, connectionID)
	return nil
}
