// internal/store/index.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tdlr-processor/internal/common/config"
	"tdlr-processor/internal/common/logger"
)

const (
	locationKeyPrefix = "processing:location:"
	recentKey         = "processing:recent"
	recentLimit       = 100
	locationTTL       = 7 * 24 * time.Hour
)

// Index keeps a short-lived Redis mapping from application id to the file
// location of its most recent result, plus a capped list of recent run ids.
// Optional collaborator, same degradation contract as the Archive.
type Index struct {
	client *redis.Client
	logger logger.Logger
}

func NewIndex(cfg config.RedisConfig, log logger.Logger) *Index {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewIndexWithClient(rdb, log)
}

// NewIndexWithClient wraps an existing client (tests use miniredis here).
func NewIndexWithClient(client *redis.Client, log logger.Logger) *Index {
	return &Index{
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "result-index",
		}),
	}
}

// Record notes where the latest result for an application was persisted.
func (i *Index) Record(ctx context.Context, applicationID, location string) error {
	if err := i.client.Set(ctx, locationKeyPrefix+applicationID, location, locationTTL).Err(); err != nil {
		return fmt.Errorf("index set: %w", err)
	}

	pipe := i.client.TxPipeline()
	pipe.LPush(ctx, recentKey, applicationID)
	pipe.LTrim(ctx, recentKey, 0, recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index recent: %w", err)
	}
	return nil
}

// Location returns the persisted location of an application's latest result.
func (i *Index) Location(ctx context.Context, applicationID string) (string, error) {
	return i.client.Get(ctx, locationKeyPrefix+applicationID).Result()
}

// Recent lists the most recently processed application ids, newest first.
func (i *Index) Recent(ctx context.Context, n int64) ([]string, error) {
	return i.client.LRange(ctx, recentKey, 0, n-1).Result()
}

// Ping tests the Redis connection
func (i *Index) Ping(ctx context.Context) error {
	if err := i.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (i *Index) Close() error {
	if i.client != nil {
		return i.client.Close()
	}
	return nil
}
