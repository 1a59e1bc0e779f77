// Package file stores each slot as one file in a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a partial slot.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

var _ ports.SlotStore = (*Store)(nil)

// Store is a directory of slot files.
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	written map[string][]byte
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: directory is required")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating slot directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{dir: dir, logger: logger, written: make(map[string][]byte)}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("file store: invalid slot key %q", key)
	}

	return filepath.Join(s.dir, key), nil
}

// Get implements ports.SlotStore.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NewNotFoundError("slot", key)
	}

	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", key, err)
	}

	return data, nil
}

// Put implements ports.SlotStore.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", key, err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing slot %q: %w", key, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing slot %q: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing slot %q: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing slot %q: %w", key, err)
	}

	s.written[key] = bytes.Clone(value)

	return nil
}

// ownWrite reports whether data is what this store last wrote to key.
func (s *Store) ownWrite(key string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.written[key]

	return ok && bytes.Equal(last, data)
}

// Ping checks the directory is still there.
func (s *Store) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("slot directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("slot directory %s is not a directory", s.dir)
	}

	return nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}
