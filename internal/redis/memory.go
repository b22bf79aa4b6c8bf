package redis

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      SessionData
	expiresAt time.Time
}

// MemoryClient keeps sessions in process memory. It is used when no Redis
// URL is configured.
type MemoryClient struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryClient) SetSession(_ context.Context, sessionID string, data *SessionData, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{data: *data}
	entry.data.Cart = append(entry.data.Cart[:0:0], data.Cart...)
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.sessions[sessionID] = entry
	return nil
}

func (m *MemoryClient) GetSession(_ context.Context, sessionID string) (*SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.sessions, sessionID)
		return nil, ErrNotFound
	}
	data := entry.data
	data.Cart = append(data.Cart[:0:0], entry.data.Cart...)
	return &data, nil
}

func (m *MemoryClient) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryClient) Close() error { return nil }
