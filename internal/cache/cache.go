package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/printware/printdesk/internal/domain/model"
)

// redisClient is the subset of redis.Client the cache needs; it allows
// swapping in a stub client for tests.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type statusEntry struct {
	BulkOrderID     string `json:"bulk_order_id"`
	Status          string `json:"status"`
	OrderNumber     string `json:"order_number"`
	DistinctDesigns int    `json:"distinct_designs"`
	TotalCopies     int    `json:"total_copies"`
	ParentOrderID   *int64 `json:"parent_order_id,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// RedisStatusCache keeps bulk order status snapshots in Redis so that status
// polling does not hit PostgreSQL on every tick. Cache failures degrade to
// repository reads and are only logged.
type RedisStatusCache struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStatusCache wraps an established redis client.
func NewRedisStatusCache(client redisClient, ttl time.Duration, logger *slog.Logger) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisStatusCache) Get(ctx context.Context, bulkOrderID string) (*model.BulkStatus, bool) {
	raw, err := c.client.Get(ctx, BulkStatusKey(bulkOrderID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("status cache read failed",
				slog.String("bulk_order", bulkOrderID), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var entry statusEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("status cache entry corrupted",
			slog.String("bulk_order", bulkOrderID), slog.String("error", err.Error()))
		return nil, false
	}

	return &model.BulkStatus{
		BulkOrderID:     entry.BulkOrderID,
		Status:          model.BulkOrderStatus(entry.Status),
		OrderNumber:     entry.OrderNumber,
		DistinctDesigns: entry.DistinctDesigns,
		TotalCopies:     entry.TotalCopies,
		ParentOrderID:   entry.ParentOrderID,
		FailureReason:   entry.FailureReason,
	}, true
}

func (c *RedisStatusCache) Put(ctx context.Context, snapshot *model.BulkStatus) {
	entry := statusEntry{
		BulkOrderID:     snapshot.BulkOrderID,
		Status:          string(snapshot.Status),
		OrderNumber:     snapshot.OrderNumber,
		DistinctDesigns: snapshot.DistinctDesigns,
		TotalCopies:     snapshot.TotalCopies,
		ParentOrderID:   snapshot.ParentOrderID,
		FailureReason:   snapshot.FailureReason,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("status cache encode failed",
			slog.String("bulk_order", snapshot.BulkOrderID), slog.String("error", err.Error()))
		return
	}

	if err := c.client.Set(ctx, BulkStatusKey(snapshot.BulkOrderID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed",
			slog.String("bulk_order", snapshot.BulkOrderID), slog.String("error", err.Error()))
	}
}

// NopCache is used when no Redis address is configured; every lookup misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*model.BulkStatus, bool) { return nil, false }
func (NopCache) Put(context.Context, *model.BulkStatus)                {}
