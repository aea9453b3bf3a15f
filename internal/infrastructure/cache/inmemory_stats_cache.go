package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
)

type statsEntry struct {
	periods   map[string]partnerapp.ClientStats
	expiresAt time.Time
}

// InMemoryStatsCache implements StatsCache in process memory.
// Suitable for single-instance deployments and tests; entries expire lazily.
type InMemoryStatsCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*statsEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryStatsCache creates an empty cache. A zero ttl never expires.
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	return &InMemoryStatsCache{
		entries: make(map[uuid.UUID]*statsEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements StatsCache
func (c *InMemoryStatsCache) Get(ctx context.Context, orgID uuid.UUID, period string) (*partnerapp.ClientStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[orgID]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.entries, orgID)
		return nil, false, nil
	}
	stats, ok := e.periods[period]
	if !ok {
		return nil, false, nil
	}
	return &stats, true, nil
}

// Set implements StatsCache. Like the Redis hash, writing any period
// refreshes the organization's expiry.
func (c *InMemoryStatsCache) Set(ctx context.Context, orgID uuid.UUID, period string, stats partnerapp.ClientStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[orgID]
	if !ok {
		e = &statsEntry{periods: make(map[string]partnerapp.ClientStats)}
		c.entries[orgID] = e
	}
	e.periods[period] = stats
	e.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate implements StatsCache
func (c *InMemoryStatsCache) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orgID)
	return nil
}

var _ partnerapp.StatsCache = (*InMemoryStatsCache)(nil)
