package storage

import (
	"context"
	"sync"
)

type Memory struct {
	m    sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Memory) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = v
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, key)
	return nil
}

// Keys lists stored keys in no particular order.
func (s *Memory) Keys() []string {
	s.m.RLock()
	defer s.m.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
