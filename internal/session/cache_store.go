package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bloomforge/internal/cache"
	"bloomforge/internal/domain"

	"go.uber.org/zap"
)

// CacheStore persists sessions as JSON through domain.Cache, so several API
// processes can share them. Mutations are serialised per session within this
// process only.
type CacheStore struct {
	cache   domain.Cache
	ttl     time.Duration
	locks   *keyedMutex
	onEvict EvictFunc
	logger  *zap.Logger
	now     func() time.Time
}

// NewCacheStore returns a store whose records expire ttl after creation.
func NewCacheStore(c domain.Cache, ttl time.Duration, onEvict EvictFunc, logger *zap.Logger) *CacheStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStore{
		cache:   c,
		ttl:     ttl,
		locks:   newKeyedMutex(),
		onEvict: onEvict,
		logger:  logger,
		now:     time.Now,
	}
}

var _ domain.SessionStore = (*CacheStore)(nil)

// remaining is the TTL left for s; updates must not extend it.
func (c *CacheStore) remaining(s *domain.Session) time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return s.ExpiresAt(c.ttl).Sub(c.now())
}

func (c *CacheStore) write(ctx context.Context, s *domain.Session) error {
	ttl := c.remaining(s)
	if c.ttl > 0 && ttl <= 0 {
		return domain.NewSessionNotFoundError(s.ID)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
	}
	if err := c.cache.Set(ctx, cache.SessionKey(s.ID), string(raw), ttl); err != nil {
		return domain.NewInternalError("failed to store session", err)
	}
	return nil
}

func (c *CacheStore) read(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := c.cache.Get(ctx, cache.SessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewSessionNotFoundError(id)
		}
		return nil, domain.NewInternalError("failed to load session", err)
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, domain.NewInternalError("stored session is corrupt", err).WithContext("session_id", id)
	}
	return &s, nil
}

func (c *CacheStore) Create(ctx context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	unlock := c.locks.Lock(s.ID)
	defer unlock()

	if err := c.write(ctx, s); err != nil {
		return err
	}
	if err := c.cache.HSet(ctx, cache.SessionIndexKey(), s.ID, strconv.FormatInt(s.CreatedAt.Unix(), 10)); err != nil {
		c.logger.Warn("Failed to index session for eviction", zap.String("session_id", s.ID), zap.Error(err))
	}
	return nil
}

func (c *CacheStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return c.read(ctx, id)
}

func (c *CacheStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	s, err := c.read(ctx, id)
	if err != nil {
		return nil, err
	}
	createdAt := s.CreatedAt
	if err := fn(s); err != nil {
		return nil, err
	}
	s.ID = id
	s.CreatedAt = createdAt
	s.UpdatedAt = c.now()
	if err := c.write(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *CacheStore) Delete(ctx context.Context, id string) error {
	unlock := c.locks.Lock(id)
	defer unlock()

	if err := c.cache.Delete(ctx, cache.SessionKey(id)); err != nil {
		return domain.NewInternalError("failed to delete session", err)
	}
	return c.cache.HDel(ctx, cache.SessionIndexKey(), id)
}

// Purge walks the session index and evicts ids whose TTL has passed. The
// record itself has usually already expired in the cache; the index keeps
// enough to run the eviction hook.
func (c *CacheStore) Purge(ctx context.Context) int {
	index, err := c.cache.HGetAll(ctx, cache.SessionIndexKey())
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Warn("Failed to read session index", zap.Error(err))
		}
		return 0
	}

	evicted := 0
	for id, created := range index {
		unix, err := strconv.ParseInt(created, 10, 64)
		if err != nil {
			_ = c.cache.HDel(ctx, cache.SessionIndexKey(), id)
			continue
		}
		s := &domain.Session{ID: id, CreatedAt: time.Unix(unix, 0)}
		if c.ttl <= 0 || c.now().Before(s.ExpiresAt(c.ttl)) {
			continue
		}
		if err := c.Delete(ctx, id); err != nil {
			c.logger.Warn("Failed to evict session", zap.String("session_id", id), zap.Error(err))
			continue
		}
		evicted++
		c.logger.Info("Session expired", zap.String("session_id", id))
		if c.onEvict != nil {
			c.onEvict(ctx, s)
		}
	}
	return evicted
}

// Run sweeps the index every interval until ctx is done.
func (c *CacheStore) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, c.Purge)
}
