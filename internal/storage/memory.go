package storage

import (
	"context"
	"sync"
)

// MemorySlot keeps the slot in process memory. Nothing survives a restart.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySlot) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}
