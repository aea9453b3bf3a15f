package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStatsCache_GetSetInvalidate(t *testing.T) {
	c := NewInMemoryStatsCache(time.Minute)
	ctx := context.Background()
	orgID := uuid.New()
	stats := partnerapp.ClientStats{Total: 12, NewThisMonth: 3}

	_, ok, err := c.Get(ctx, orgID, "2024-05")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, orgID, "2024-05", stats))

	got, ok, err := c.Get(ctx, orgID, "2024-05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, *got)

	_, ok, _ = c.Get(ctx, orgID, "2024-06")
	assert.False(t, ok, "other periods miss")

	_, ok, _ = c.Get(ctx, uuid.New(), "2024-05")
	assert.False(t, ok, "other organizations miss")

	require.NoError(t, c.Invalidate(ctx, orgID))
	_, ok, _ = c.Get(ctx, orgID, "2024-05")
	assert.False(t, ok)
}

func TestInMemoryStatsCache_Expiry(t *testing.T) {
	c := NewInMemoryStatsCache(time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	orgID := uuid.New()

	require.NoError(t, c.Set(ctx, orgID, "2024-05", partnerapp.ClientStats{Total: 1}))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, orgID, "2024-05")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = c.Get(ctx, orgID, "2024-05")
	assert.False(t, ok)
}

func TestInMemoryStatsCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewInMemoryStatsCache(0)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()
	orgID := uuid.New()

	require.NoError(t, c.Set(ctx, orgID, "2024-05", partnerapp.ClientStats{Total: 1}))
	now = now.Add(24 * time.Hour)

	_, ok, _ := c.Get(ctx, orgID, "2024-05")
	assert.True(t, ok)
}

func TestInMemoryStatsCache_Concurrent(t *testing.T) {
	c := NewInMemoryStatsCache(time.Minute)
	ctx := context.Background()
	orgID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = c.Set(ctx, orgID, "2024-05", partnerapp.ClientStats{Total: int64(n)})
			_, _, _ = c.Get(ctx, orgID, "2024-05")
			if n%5 == 0 {
				_ = c.Invalidate(ctx, orgID)
			}
		}(i)
	}
	wg.Wait()
}
