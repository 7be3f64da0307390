package notice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared by every process pointing at the same server.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to cfg.RedisAddr and checks the connection.
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("notice: redis ping failed: %w", err)
	}
	return NewRedisFromClient(rdb, cfg.Prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) Set(ctx context.Context, key string, value State, ttl time.Duration) error {
	if !value.Valid() {
		return ErrInvalidState
	}
	return r.client.Set(ctx, r.key(key), string(value), ttl).Err()
}

func (r *Redis) GetAndClear(ctx context.Context, key string) (State, bool, error) {
	v, err := r.client.GetDel(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return State(v), true, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
