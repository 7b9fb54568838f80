package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const listCacheTTL = 5 * time.Minute

// ListCache is the subset of cache.Client the listing services use.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedList serves key from cache when possible and fills it from load
// otherwise. Cache failures never fail the listing.
func cachedList[T any](ctx context.Context, cache ListCache, logger *zap.Logger, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var cached []T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := cache.Set(ctx, key, payload, listCacheTTL); err != nil {
				logger.Warn("fill list cache", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return items, nil
}

func invalidateList(ctx context.Context, cache ListCache, logger *zap.Logger, key string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, key); err != nil {
		logger.Warn("invalidate list cache", zap.String("key", key), zap.Error(err))
	}
}
