// Package storage persists the extension state in two key-value partitions:
// a local one for tokens, settings and history, and a synchronized one for
// the user profile and avatar.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a key has no value
var ErrNotFound = errors.New("key not found")

// Partition is a key-value area
type Partition interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryPartition is a Partition held in process memory
type MemoryPartition struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryPartition creates an empty in-memory partition
func NewMemoryPartition() *MemoryPartition {
	return &MemoryPartition{values: make(map[string][]byte)}
}

// Get implements Partition
func (m *MemoryPartition) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set implements Partition
func (m *MemoryPartition) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Remove implements Partition. Removing a missing key is not an error.
func (m *MemoryPartition) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
