package store

import (
	"context"
	"sync"
)

// Memory is an in-process backend. Contents are lost on exit.
type Memory struct {
	data map[string]string
	mu   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	m.mu.RLock()
	val, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
