package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TecharoHQ/hasher/lib/store"
)

// PreferenceStore names where theme preferences are kept.
type PreferenceStore string

const (
	PreferenceStoreCookie PreferenceStore = "cookie"
	PreferenceStoreMemory PreferenceStore = "memory"
	PreferenceStoreRedis  PreferenceStore = "redis"
)

// makePreferences builds the server-side preference backend. A nil Backend
// means preferences live in browser cookies.
func makePreferences(ctx context.Context, kind PreferenceStore, ttl time.Duration, redisURL string) (store.Backend, error) {
	switch kind {
	case PreferenceStoreCookie, "":
		return nil, nil
	case PreferenceStoreMemory:
		slog.Warn("keeping preferences in memory, they will be lost on restart and not shared between instances")
		return store.NewMemory(ttl), nil
	case PreferenceStoreRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("preference store %s needs REDIS_URL to be set", kind)
		}

		client, err := store.DialRedis(ctx, redisURL)
		if err != nil {
			return nil, err
		}

		return store.NewRedis(client, ttl), nil
	default:
		return nil, fmt.Errorf("unknown preference store %q, want one of cookie, memory, redis", kind)
	}
}
