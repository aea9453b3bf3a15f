package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "stats:clients:"

// RedisStatsCache implements StatsCache with one Redis hash per organization.
// Hash fields are periods ("2006-01"), so Invalidate is a single DEL.
type RedisStatsCache struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStatsCache creates a stats cache on an existing client
func NewRedisStatsCache(client redis.Cmdable, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{
		client:    client,
		keyPrefix: statsKeyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached counters for the period, or a miss
func (c *RedisStatsCache) Get(ctx context.Context, orgID uuid.UUID, period string) (*partnerapp.ClientStats, bool, error) {
	raw, err := c.client.HGet(ctx, c.key(orgID), period).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read client stats: %w", err)
	}

	var stats partnerapp.ClientStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode client stats: %w", err)
	}
	return &stats, true, nil
}

// Set stores the counters for the period and refreshes the hash TTL
func (c *RedisStatsCache) Set(ctx context.Context, orgID uuid.UUID, period string, stats partnerapp.ClientStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode client stats: %w", err)
	}

	key := c.key(orgID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, period, raw)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write client stats: %w", err)
	}
	return nil
}

// Invalidate drops every cached period of the organization
func (c *RedisStatsCache) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(orgID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate client stats: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) key(orgID uuid.UUID) string {
	return c.keyPrefix + orgID.String()
}

var _ partnerapp.StatsCache = (*RedisStatsCache)(nil)
