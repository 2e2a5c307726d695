package store

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Uses STOREGUARD_TEST_REDIS_ADDR (default localhost:6379); skips when Redis is unreachable.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("STOREGUARD_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rs, err := NewRedisStore(addr, "storeguard-test")
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rs.Close() })
	return rs
}

func TestRedisStoreBasic(t *testing.T) {
	rs := newTestRedisStore(t)
	t.Cleanup(func() { _ = rs.Delete("testkey") })

	require.NoError(t, rs.Set("testkey", `{"count":5}`))

	val, err := rs.Get("testkey")
	require.NoError(t, err)
	assert.Equal(t, `{"count":5}`, val)
}

func TestRedisStoreDelete(t *testing.T) {
	rs := newTestRedisStore(t)

	require.NoError(t, rs.Set("delkey", "value"))
	assert.True(t, rs.Exists("delkey"), "key should exist after Set")

	require.NoError(t, rs.Delete("delkey"))
	assert.False(t, rs.Exists("delkey"), "key should not exist after Delete")

	assert.ErrorIs(t, rs.Delete("delkey"), ErrKeyNotFound)
}

func TestRedisStoreDoesNotExist(t *testing.T) {
	rs := newTestRedisStore(t)

	_, err := rs.Get("nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, rs.Exists("nonexistent"))
}

type fakeRedisError string

func (e fakeRedisError) Error() string { return string(e) }
func (fakeRedisError) RedisError()     {}

func TestIsRedisOOM(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"oom reply", fakeRedisError("OOM command not allowed when used memory > 'maxmemory'."), true},
		{"wrapped oom reply", fmt.Errorf("set: %w", fakeRedisError("OOM command not allowed")), true},
		{"other reply", fakeRedisError("WRONGTYPE Operation against a key"), false},
		{"plain error", errors.New("OOM but not from redis"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRedisOOM(tt.err))
		})
	}
}
