package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers that are never handed out twice.
type IDGenerator interface {
	NewID() string
}

// UUIDs generates random version 4 UUIDs.
type UUIDs struct{}

func (UUIDs) NewID() string {
	return uuid.NewString()
}

// SequenceIDs generates prefix-1, prefix-2, ... and is meant for tests.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix}
}

func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
