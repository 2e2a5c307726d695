package store

import (
	"fmt"
	"sync"
)

type MemoryStore struct {
	data  map[string]string
	used  int
	quota int
	mu    sync.Mutex
}

// NewMemoryStore returns a store with no size limit.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithQuota(0)
}

// NewMemoryStoreWithQuota returns a store holding at most quota characters
// of keys and values combined. A quota <= 0 disables the limit.
func NewMemoryStoreWithQuota(quota int) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]string),
		quota: quota,
	}
}

func (ms *MemoryStore) Get(key string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	value, exists := ms.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	used := ms.used + Len(key) + Len(value)
	if old, exists := ms.data[key]; exists {
		used -= Len(key) + Len(old)
	}
	if ms.quota > 0 && used > ms.quota {
		return fmt.Errorf("%w: setting %q needs %d of %d characters", ErrQuotaExceeded, key, used, ms.quota)
	}

	ms.data[key] = value
	ms.used = used
	return nil
}

func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	value, exists := ms.data[key]
	if !exists {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	delete(ms.data, key)
	ms.used -= Len(key) + Len(value)
	return nil
}

func (ms *MemoryStore) Exists(key string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	_, exists := ms.data[key]
	return exists
}

// Used returns the number of characters currently stored.
func (ms *MemoryStore) Used() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.used
}

// Count returns the number of entries.
func (ms *MemoryStore) Count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.data)
}
