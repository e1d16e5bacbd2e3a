package settings

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory settings store for demo/testing.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Setting
}

// NewMemoryStore constructs a store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Setting)}
}

// Get loads one setting by key.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Setting, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	setting, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &setting, nil
}

// List returns all settings.
func (s *MemoryStore) List(ctx context.Context) ([]Setting, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Setting, 0, len(s.data))
	for _, setting := range s.data {
		result = append(result, setting)
	}
	return result, nil
}

// Put stores a setting, replacing any existing value for the key.
func (s *MemoryStore) Put(ctx context.Context, setting Setting) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[setting.Key] = setting
	return nil
}
