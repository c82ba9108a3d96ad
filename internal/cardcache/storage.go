package cardcache

import (
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by MemoryStorage when a write would exceed its limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a flat string-keyed byte store. Writes replace the whole value.
type Storage interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryStorage is an in-process Storage with an optional byte quota, the
// same failure mode a browser's localStorage has.
type MemoryStorage struct {
	mu    sync.Mutex
	data  map[string][]byte
	limit int
}

// NewMemoryStorage returns an empty store. limit <= 0 means unlimited.
func NewMemoryStorage(limit int) *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte), limit: limit}
}

func (m *MemoryStorage) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.limit {
			return ErrQuotaExceeded
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len is the number of stored keys.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
