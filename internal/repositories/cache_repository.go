package repositories

import (
	"context"
	"time"
)

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	// DelByPrefix удаляет все ключи с данным префиксом.
	// Инвалидация всегда префиксная, никогда - глобальный flush.
	DelByPrefix(ctx context.Context, prefix string) error
}
