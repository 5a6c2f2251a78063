package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the value in process memory. It is used by tests and by
// the "memory" driver for throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	found  bool
	closed bool

	// SaveErr, when set, is returned by every Save to simulate a full or
	// broken medium.
	SaveErr error
	// LoadErr, when set, is returned by every Load.
	LoadErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store already holding data.
func NewMemoryStoreWith(data []byte) *MemoryStore {
	s := &MemoryStore{}
	s.data = append([]byte(nil), data...)
	s.found = true
	return s
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrStoreClosed
	}
	if s.LoadErr != nil {
		return nil, false, storeError("memory load", s.LoadErr)
	}
	if !s.found {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.SaveErr != nil {
		return storeError("memory save", s.SaveErr)
	}
	s.data = append([]byte(nil), data...)
	s.found = true
	return nil
}

// Bytes returns the stored value, or nil when nothing was saved.
func (s *MemoryStore) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.found {
		return nil
	}
	return append([]byte(nil), s.data...)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
