// Package storage provides the durable slot the board collection is written to.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been saved under the key yet.
var ErrNotFound = errors.New("slot not found")

// Slot is a single value kept under a fixed key.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
