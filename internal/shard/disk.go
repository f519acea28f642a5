package shard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/cindex-mcp/pkg/types"
)

// indexSubdir is the reserved directory created under the initialization
// root. Everything inside it belongs to the store.
const indexSubdir = ".cindex"

type initState int

const (
	initPending initState = iota
	initDone
	initFailed
)

// DiskStore keeps one file per shard inside a reserved subdirectory of a
// project root. Store/Retrieve need no locking beyond what the filesystem
// guarantees for atomic rename; only the rarely mutated root binding is
// guarded.
type DiskStore struct {
	mu    sync.Mutex
	root  string
	state initState
}

// NewDiskStore creates an unbound disk store. Initialize must succeed before
// Store/Retrieve do anything useful.
func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

// Initialize binds the store to root/.cindex, creating it if needed. The
// first successful call wins; later calls are no-ops returning nil, even
// with a different root. A failed first call disables the store permanently.
func (s *DiskStore) Initialize(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case initDone:
		return nil
	case initFailed:
		return ErrNotInitialized
	}

	dir := filepath.Join(root, indexSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.state = initFailed
		return fmt.Errorf("failed to create shard directory: %w", err)
	}
	s.root = dir
	s.state = initDone
	return nil
}

// shardPath returns the absolute path for a file's shard, or
// ErrNotInitialized when the store is not (or failed to be) bound.
func (s *DiskStore) shardPath(file string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != initDone {
		return "", ErrNotInitialized
	}
	return filepath.Join(s.root, identifierFor(file)), nil
}

// Store writes the shard for file with write-new-then-rename semantics, so a
// concurrent Retrieve sees either the old shard or the new one, never a mix.
func (s *DiskStore) Store(ctx context.Context, file string, shard *Shard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.shardPath(file)
	if err != nil {
		return err
	}
	data, err := encode(shard)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp shard: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write shard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close shard: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish shard: %w", err)
	}
	return nil
}

// Retrieve reads back the shard for file and verifies it was written under
// the expected digest.
func (s *DiskStore) Retrieve(ctx context.Context, file string, expected types.Digest) (*Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.shardPath(file)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read shard: %w", err)
	}

	shard, err := decode(data)
	if err != nil {
		return nil, err
	}
	if shard.Digest != expected {
		return nil, ErrStale
	}
	return shard, nil
}
