package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisOpTimeout bounds every redis write so a dead server cannot wedge
// the session layer.
const redisOpTimeout = 5 * time.Second

// Redis is a Storage backed by a redis server, for server-side agents that
// want the session to survive host restarts or be shared by replicas of the
// same agent. Keys are namespaced under a prefix so multiple partitions can
// share one database, mirroring how browser profiles partition localStorage.
//
// To honour the Storage contract (reads are synchronous and never block on
// the network) the store keeps a write-through in-memory view: the prefix is
// scanned once at construction and every mutation updates both redis and the
// local view. The partition is single-writer by design, exactly like one
// browser profile.
type Redis struct {
	client *redis.Client
	prefix string

	local *Memory
}

// NewRedis creates a redis-backed store scoped to prefix and loads the
// current partition contents. Construction fails if the server is
// unreachable, so a misconfigured agent fails fast instead of silently
// running without persistence.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
//	store, err := storage.NewRedis(client, "carelink:session:")
func NewRedis(client *redis.Client, prefix string) (*Redis, error) {
	r := &Redis{
		client: client,
		prefix: prefix,
		local:  NewMemory(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to load storage key %s: %w", key, err)
		}
		_ = r.local.Set(strings.TrimPrefix(key, prefix), val)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan storage partition: %w", err)
	}

	return r, nil
}

// Get returns the value for key from the local view.
func (r *Redis) Get(key string) (string, bool) {
	return r.local.Get(key)
}

// Set stores value under key in redis and the local view.
func (r *Redis) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to write storage key")
		return fmt.Errorf("storage set error: %w", err)
	}

	return r.local.Set(key, value)
}

// Delete removes the given keys from redis and the local view.
func (r *Redis) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("Failed to delete storage keys")
		return fmt.Errorf("storage delete error: %w", err)
	}

	return r.local.Delete(keys...)
}

// Clear removes every key in the partition using SCAN, so unrelated keys in
// the same database are untouched.
func (r *Redis) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan storage partition: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("storage clear error: %w", err)
		}
	}

	return r.local.Clear()
}
