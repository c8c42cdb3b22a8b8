// Package session provides domain.SessionStore implementations with a fixed,
// non-renewing TTL.
package session

import (
	"context"
	"sync"
	"time"

	"bloomforge/internal/domain"

	"go.uber.org/zap"
)

// EvictFunc runs after a session has been removed by TTL expiry.
type EvictFunc func(ctx context.Context, s *domain.Session)

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	onEvict EvictFunc
	logger  *zap.Logger
	now     func() time.Time
}

// NewMemoryStore returns a store whose entries live for ttl after creation.
func NewMemoryStore(ttl time.Duration, onEvict EvictFunc, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		onEvict: onEvict,
		logger:  logger,
		now:     time.Now,
	}
}

var _ domain.SessionStore = (*MemoryStore)(nil)

func (m *MemoryStore) expired(s *domain.Session) bool {
	return m.ttl > 0 && !m.now().Before(s.ExpiresAt(m.ttl))
}

func (m *MemoryStore) Create(_ context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[s.ID]; exists {
		return domain.NewInvalidInputError("session already exists").WithContext("session_id", s.ID)
	}
	m.entries[s.ID] = &entry{session: s.Clone()}
	return nil
}

func (m *MemoryStore) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return e, nil
}

// Get returns a copy; callers never share state with the store.
func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || m.expired(e.session) {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return e.session.Clone(), nil
}

// Update applies fn under the session's lock. A failing fn leaves the stored
// session unchanged.
func (m *MemoryStore) Update(_ context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || m.expired(e.session) {
		return nil, domain.NewSessionNotFoundError(id)
	}

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.CreatedAt = e.session.CreatedAt
	working.UpdatedAt = m.now()
	e.session = working
	return working.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.session = nil
		e.mu.Unlock()
	}
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Purge removes every expired session and runs the eviction hook for each.
func (m *MemoryStore) Purge(ctx context.Context) int {
	var evicted []*domain.Session

	m.mu.Lock()
	for id, e := range m.entries {
		e.mu.Lock()
		if e.session == nil || m.expired(e.session) {
			if e.session != nil {
				evicted = append(evicted, e.session)
			}
			e.session = nil
			delete(m.entries, id)
		}
		e.mu.Unlock()
	}
	m.mu.Unlock()

	for _, s := range evicted {
		m.logger.Info("Session expired", zap.String("session_id", s.ID), zap.Int("documents", len(s.Documents)))
		if m.onEvict != nil {
			m.onEvict(ctx, s)
		}
	}
	return len(evicted)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, m.Purge)
}

func runSweeper(ctx context.Context, interval time.Duration, purge func(context.Context) int) {
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
			purge(ctx)
		}
	}
}
