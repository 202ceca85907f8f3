package storage

import (
	"encoding/json"
	"sync"
)

// Memory keeps the collection as an encoded JSON document in memory, so
// callers observe the same copy semantics as the persistent backends.
type Memory[T any] struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns an empty in-memory collection.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

// Load decodes the stored items.
func (m *Memory[T]) Load() ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode[T](m.data)
}

// Save replaces the stored items.
func (m *Memory[T]) Save(items []T) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// SetRaw stores raw bytes as the document, bypassing encoding.
func (m *Memory[T]) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func decode[T any](data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
