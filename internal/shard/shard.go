package shard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"

	"github.com/dshills/cindex-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when no shard exists for the requested file.
	ErrNotFound = errors.New("shard not found")
	// ErrStale is returned when the stored shard's digest differs from the
	// expected digest: the content moved on without a rewrite, or the shard
	// is corrupt.
	ErrStale = errors.New("shard is stale")
	// ErrNotInitialized is returned by Store/Retrieve before a successful
	// Initialize, or forever after a failed one.
	ErrNotInitialized = errors.New("shard store not initialized")
)

// Shard is the persisted form of one file's indexing contribution.
type Shard struct {
	Symbols types.SymbolSlab
	Refs    types.RefSlab
	Digest  types.Digest // Content digest of the source file

	// Deps maps every file the owning translation unit touched to the
	// digest observed for it. Populated only on main-file shards; used on
	// restart to decide whether the whole unit can be served from the
	// store without re-indexing.
	Deps map[string]types.Digest
}

// Store persists and retrieves per-file index shards.
// Implementations must be safe for concurrent use.
type Store interface {
	// Initialize binds the store to a directory under root. First
	// successful call wins; subsequent calls are no-ops returning nil.
	Initialize(root string) error

	// Store durably writes the shard for file, overwriting any prior
	// shard. A concurrent Retrieve never observes a partial write.
	Store(ctx context.Context, file string, shard *Shard) error

	// Retrieve reads back the shard for file. Fails with ErrNotFound if
	// none exists and ErrStale if the stored digest differs from expected.
	Retrieve(ctx context.Context, file string, expected types.Digest) (*Shard, error)
}

// identifierFor derives a filesystem-safe, collision-resistant shard
// identifier from a file path. The readable base name aids debugging; the
// hash of the full path disambiguates equal base names.
func identifierFor(file string) string {
	sum := sha256.Sum256([]byte(file))
	return filepath.Base(file) + "." + hex.EncodeToString(sum[:8])
}

// NullStore discards all shards. It satisfies Store so callers that want
// persistence disabled need no special casing.
type NullStore struct{}

// Initialize is a no-op.
func (NullStore) Initialize(string) error { return nil }

// Store discards the shard.
func (NullStore) Store(context.Context, string, *Shard) error { return nil }

// Retrieve always misses.
func (NullStore) Retrieve(context.Context, string, types.Digest) (*Shard, error) {
	return nil, ErrNotFound
}
