package session

import (
	"context"
	"sync"
	"time"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// MemoryStore is an in-process Store
type MemoryStore struct {
	sessions map[int64]model.Session
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores s, stamping CreatedAt when unset
func (m *MemoryStore) Put(_ context.Context, s model.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}

	m.mu.Lock()
	m.sessions[s.OwnerID] = s
	m.mu.Unlock()
	return nil
}

// Take removes and returns the live session of ownerID
func (m *MemoryStore) Take(_ context.Context, ownerID int64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[ownerID]
	if !exists {
		return nil, nil
	}
	delete(m.sessions, ownerID)

	if s.Expired(m.now(), m.ttl) {
		return nil, nil
	}
	return &s, nil
}

// Sweep drops expired sessions
func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for owner, s := range m.sessions {
		if s.Expired(now, m.ttl) {
			delete(m.sessions, owner)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, live or not yet swept
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
