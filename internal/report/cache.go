package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheNamespace = "butce:report"
	versionKey     = cacheNamespace + ":version"
)

// Cache rapor cevaplarını Redis'te tutar. Anahtarlar her işlem yazımında
// artan bir versiyon sayacı içerir; eski kayıtlar bir daha okunmaz ve TTL ile
// düşer. nil *Cache önbelleği kapatır.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache client nil ise nil döner.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger.Named("report_cache")}
}

// Invalidate önbellekteki tüm raporları geçersiz kılar.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn("Rapor önbelleği sürümü artırılamadı", zap.Error(err))
	}
}

func (c *Cache) key(ctx context.Context, name string, parts ...any) (string, bool) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Debug("Rapor önbelleği okunamadı", zap.Error(err))
		return "", false
	}
	key := fmt.Sprintf("%s:v%d:%s", cacheNamespace, version, name)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key, true
}

// cached anahtardaki değeri döner, yoksa load ile hesaplayıp yazar. Redis
// hatasında load yine cevap verir.
func cached[T any](ctx context.Context, c *Cache, name string, load func() (T, error), parts ...any) (T, error) {
	if c == nil {
		return load()
	}
	key, ok := c.key(ctx, name, parts...)
	if !ok {
		return load()
	}

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		_ = c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Debug("Rapor önbelleği okunamadı", zap.String("key", key), zap.Error(err))
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Debug("Rapor önbelleğe yazılamadı", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}
