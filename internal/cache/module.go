package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/printware/printdesk/internal/config"
	"github.com/printware/printdesk/internal/usecase"
)

// Module provides the bulk order status cache. Without a configured Redis
// address the application falls back to repository-only reads.
var Module = fx.Options(
	fx.Provide(newStatusCache),
)

func newStatusCache(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) usecase.StatusCache {
	if cfg.RedisAddress == "" {
		logger.Info("status cache disabled, no redis address configured")
		return NopCache{}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedisStatusCache(client, cfg.StatusCacheTTL, logger)
}
