// Package cache implementa ports.Cache: Redis cuando está configurado, no-op en otro caso.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/pkg/config"
)

// keyPrefix separa las claves de la aplicación de otras en la misma base Redis.
const keyPrefix = "backoffice:"

// RedisCache caché de respuestas sobre go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache conecta y verifica con PING.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: conectar a redis %s: %w", cfg.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get devuelve ok=false si la clave no existe.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	return c.client.Del(ctx, full...).Err()
}

// Ping usado por /health.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

// Noop caché deshabilitada: nunca encuentra nada.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }

var (
	_ ports.Cache = (*RedisCache)(nil)
	_ ports.Cache = Noop{}
)
