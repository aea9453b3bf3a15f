package cache

import (
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewStatsCache picks the stats cache for the configuration.
// With Redis enabled it connects and returns the client so the caller can
// close it; when Redis is disabled or unreachable it falls back to memory.
func NewStatsCache(cfg config.RedisConfig, logger *zap.Logger) (partnerapp.StatsCache, *redis.Client) {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory client stats cache")
		return NewInMemoryStatsCache(cfg.StatsTTL), nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory client stats cache",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err),
		)
		return NewInMemoryStatsCache(cfg.StatsTTL), nil
	}

	logger.Info("Using Redis client stats cache", zap.String("addr", cfg.RedisAddr()))
	return NewRedisStatsCache(client, cfg.StatsTTL), client
}
