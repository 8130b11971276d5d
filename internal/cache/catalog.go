package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clickservice/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const (
	keyServiceList = "catalog:services"
	keyServicePref = "catalog:service:"
)

// CatalogCache holds read-mostly catalog entries. A miss is (nil, false);
// backend failures are logged and treated as misses.
type CatalogCache interface {
	GetServices(ctx context.Context) ([]domain.Service, bool)
	SetServices(ctx context.Context, services []domain.Service)
	GetService(ctx context.Context, id int64) (*domain.Service, bool)
	SetService(ctx context.Context, s *domain.Service)
	Invalidate(ctx context.Context, ids ...int64)
}

type RedisCatalog struct {
	rdb goredis.UniversalClient
	ttl time.Duration
	log *slog.Logger
}

func NewRedisCatalog(rdb goredis.UniversalClient, ttl time.Duration, log *slog.Logger) *RedisCatalog {
	return &RedisCatalog{rdb: rdb, ttl: ttl, log: log}
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func serviceKey(id int64) string {
	return fmt.Sprintf("%s%d", keyServicePref, id)
}

func (c *RedisCatalog) GetServices(ctx context.Context) ([]domain.Service, bool) {
	var out []domain.Service
	if !c.get(ctx, keyServiceList, &out) {
		return nil, false
	}
	return out, true
}

func (c *RedisCatalog) SetServices(ctx context.Context, services []domain.Service) {
	c.set(ctx, keyServiceList, services)
}

func (c *RedisCatalog) GetService(ctx context.Context, id int64) (*domain.Service, bool) {
	var out domain.Service
	if !c.get(ctx, serviceKey(id), &out) {
		return nil, false
	}
	return &out, true
}

func (c *RedisCatalog) SetService(ctx context.Context, s *domain.Service) {
	c.set(ctx, serviceKey(s.ID), s)
}

func (c *RedisCatalog) Invalidate(ctx context.Context, ids ...int64) {
	keys := []string{keyServiceList}
	for _, id := range ids {
		keys = append(keys, serviceKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("catalog cache invalidate failed", slog.Any("error", err))
	}
}

func (c *RedisCatalog) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("catalog cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("catalog cache entry corrupt", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *RedisCatalog) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) GetServices(context.Context) ([]domain.Service, bool) { return nil, false }
func (Noop) SetServices(context.Context, []domain.Service) {}
func (Noop) GetService(context.Context, int64) (*domain.Service, bool) { return nil, false }
func (Noop) SetService(context.Context, *domain.Service) {}
func (Noop) Invalidate(context.Context, ...int64) {}
