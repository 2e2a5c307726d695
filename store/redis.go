package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client    *redis.Client
	ctx       context.Context
	namespace string
}

// NewRedisStore connects to Redis at addr. Keys are stored under
// "<namespace>:" so several origins can share one server.
func NewRedisStore(addr, namespace string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		ctx:       ctx,
		namespace: namespace,
	}, nil
}

func (r *RedisStore) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

func (r *RedisStore) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return "", err
	}

	return val, nil
}

// Set stores a value without expiry. A server at maxmemory answers with
// an OOM error, which is reported as ErrQuotaExceeded.
func (r *RedisStore) Set(key, value string) error {
	err := r.client.Set(r.ctx, r.key(key), value, 0).Err()
	if isRedisOOM(err) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// Delete removes a key from Redis
func (r *RedisStore) Delete(key string) error {
	n, err := r.client.Del(r.ctx, r.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

// Exists checks if a key exists in Redis
func (r *RedisStore) Exists(key string) bool {
	exists, err := r.client.Exists(r.ctx, r.key(key)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func isRedisOOM(err error) bool {
	var rerr redis.Error
	if !errors.As(err, &rerr) {
		return false
	}
	return strings.HasPrefix(rerr.Error(), "OOM ")
}
