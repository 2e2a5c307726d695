package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires PostgreSQL; set STOREGUARD_TEST_DATABASE_DSN to run.
func newTestDatabaseStore(t *testing.T, origin string, quota int) *DatabaseStore {
	t.Helper()
	dsn := os.Getenv("STOREGUARD_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("STOREGUARD_TEST_DATABASE_DSN not set")
	}
	ds, err := NewDatabaseStore(dsn, origin, quota)
	require.NoError(t, err)
	t.Cleanup(func() {
		ds.db.Where("origin = ?", origin).Delete(&StorageEntry{})
		_ = ds.Close()
	})
	return ds
}

func TestDatabaseStoreBasic(t *testing.T) {
	ds := newTestDatabaseStore(t, "test-basic", 0)

	require.NoError(t, ds.Set("wagmi.store", "v1"))
	require.NoError(t, ds.Set("wagmi.store", "v2"))

	val, err := ds.Get("wagmi.store")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
	assert.True(t, ds.Exists("wagmi.store"))

	require.NoError(t, ds.Delete("wagmi.store"))
	assert.False(t, ds.Exists("wagmi.store"))
	assert.ErrorIs(t, ds.Delete("wagmi.store"), ErrKeyNotFound)

	_, err = ds.Get("wagmi.store")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDatabaseStoreOriginsAreIsolated(t *testing.T) {
	a := newTestDatabaseStore(t, "test-origin-a", 0)
	b := newTestDatabaseStore(t, "test-origin-b", 0)

	require.NoError(t, a.Set("k", "a"))
	assert.False(t, b.Exists("k"))
}

func TestDatabaseStoreQuota(t *testing.T) {
	ds := newTestDatabaseStore(t, "test-quota", 10)

	require.NoError(t, ds.Set("k", "123456789"))
	require.NoError(t, ds.Set("k", "987654321"), "overwrite should not count the old value")

	err := ds.Set("other", strings.Repeat("x", 5))
	assert.True(t, IsQuotaExceeded(err), "expected quota error, got %v", err)
	assert.False(t, ds.Exists("other"))
}

func TestIsPostgresQuota(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"disk full", &pgconn.PgError{Code: "53100"}, true},
		{"out of memory", &pgconn.PgError{Code: "53200"}, true},
		{"program limit", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "54000"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPostgresQuota(tt.err))
		})
	}
}
