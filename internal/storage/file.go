package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot keeps the slot as a file named after the key inside a directory.
type FileSlot struct {
	path string
}

func NewFileSlot(dir, key string) (*FileSlot, error) {
	p := filepath.Clean(dir)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
	}
	return &FileSlot{path: filepath.Join(p, filepath.Base(key))}, nil
}

func (s *FileSlot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading %s: %w", s.path, err)
	}
	return data, nil
}

// Save replaces the file through a rename so a reader never sees half a write.
func (s *FileSlot) Save(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
