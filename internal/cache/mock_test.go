package cache

import (
	"context"
	"strconv"
	"time"
)

// MockCache is a map-backed Cache for unit tests.
type MockCache struct {
	data   map[string][]byte
	closed bool
}

var _ Cache = (*MockCache)(nil)

func (m *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return val, nil
}

func (m *MockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCache) Ping(_ context.Context) error {
	return nil
}

func (m *MockCache) Close() error {
	m.closed = true
	return nil
}

func parsePort(s string) (int, error) {
	return strconv.Atoi(s)
}
