// Package memory is a process-local slot store for tests and ephemeral runs.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

var _ ports.SlotStore = (*Store)(nil)

// Store keeps slots in a map. Values are copied in and out.
type Store struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{slots: make(map[string][]byte)}
}

// Get implements ports.SlotStore.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.slots[key]
	if !ok {
		return nil, domain.NewNotFoundError("slot", key)
	}

	return bytes.Clone(v), nil
}

// Put implements ports.SlotStore.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = bytes.Clone(value)

	return nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}
