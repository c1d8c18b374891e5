package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// GetterAndSetter is the part of a redis client Redis needs.
type GetterAndSetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Backend that keeps preferences in redis, so they are shared
// between replicas and survive restarts.
type Redis struct {
	client GetterAndSetter
	ttl    time.Duration
}

func NewRedis(client GetterAndSetter, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

// DialRedis connects to the redis server at a redis:// or rediss:// URL and
// makes sure it answers.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: can't parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: can't ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

func redisKey(clientID, key string) string {
	return "hasher:pref:" + clientID + ":" + key
}

func (r *Redis) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, redisKey(clientID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: can't get %s from redis: %w", key, err)
	}

	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, clientID, key, value string) error {
	if err := r.client.Set(ctx, redisKey(clientID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("store: can't set %s in redis: %w", key, err)
	}

	return nil
}
