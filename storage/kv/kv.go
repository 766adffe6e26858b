package kv

import (
	"sync"

	"github.com/darasahq/darasa/core/auth"
)

// Store is an in-process key-value mirror.
type Store struct {
	mu    sync.RWMutex
	table map[string]string
}

var _ auth.KeyValue = (*Store)(nil)

func NewStore() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[key] = value
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.table[key]
	return v, ok
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, key)
}
