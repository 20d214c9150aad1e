package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/careapp/internal/schedule"
)

// Session is the per-device booking state kept between requests.
type Session struct {
	ID         string                       `json:"id"`
	ProviderID string                       `json:"providerId"`
	Generation uint64                       `json:"generation"`
	Entries    []schedule.WorkScheduleEntry `json:"entries"`
	LoadError  string                       `json:"loadError,omitempty"`
	State      schedule.ReconcilerState     `json:"state"`
	CreatedAt  time.Time                    `json:"createdAt"`
	UpdatedAt  time.Time                    `json:"updatedAt"`
}

// UpdateFunc mutates a session in place. Returning an error aborts the write.
type UpdateFunc func(*Session) error

// SessionStore persists sessions with an idle expiry.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies fn atomically with respect to other Updates of id.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process. Used for local development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("booking: marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(s.ID); ok {
		return fmt.Errorf("booking: session %s already exists", s.ID)
	}
	m.sessions[s.ID] = memoryEntry{data: data, expires: m.expiry()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(e.data)
}

func (m *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, err := decodeSession(e.data)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = m.now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("booking: marshal session: %w", err)
	}
	m.sessions[id] = memoryEntry{data: data, expires: m.expiry()}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("booking: decode session: %w", err)
	}
	return &s, nil
}
