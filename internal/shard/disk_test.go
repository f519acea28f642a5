package shard

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cindex-mcp/pkg/types"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewDiskStore()
	require.NoError(t, s.Initialize(t.TempDir()))

	orig := testShard("/src/a.cpp", "void f();")
	require.NoError(t, s.Store(ctx, "/src/a.cpp", orig))

	t.Run("matching digest returns shard unchanged", func(t *testing.T) {
		got, err := s.Retrieve(ctx, "/src/a.cpp", orig.Digest)
		require.NoError(t, err)
		assert.Equal(t, orig.Symbols.Symbols(), got.Symbols.Symbols())
		assert.Equal(t, orig.Refs.Refs(), got.Refs.Refs())
		assert.Equal(t, orig.Digest, got.Digest)
	})

	t.Run("different digest is stale", func(t *testing.T) {
		_, err := s.Retrieve(ctx, "/src/a.cpp", types.DigestOf([]byte("something else")))
		assert.ErrorIs(t, err, ErrStale)
	})

	t.Run("missing shard is not found", func(t *testing.T) {
		_, err := s.Retrieve(ctx, "/src/missing.cpp", orig.Digest)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store overwrites prior shard", func(t *testing.T) {
		updated := testShard("/src/a.cpp", "void f(); void g();")
		require.NoError(t, s.Store(ctx, "/src/a.cpp", updated))

		_, err := s.Retrieve(ctx, "/src/a.cpp", orig.Digest)
		assert.ErrorIs(t, err, ErrStale)

		got, err := s.Retrieve(ctx, "/src/a.cpp", updated.Digest)
		require.NoError(t, err)
		assert.Equal(t, updated.Digest, got.Digest)
	})
}

func TestDiskStoreInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("creates reserved subdirectory", func(t *testing.T) {
		root := t.TempDir()
		s := NewDiskStore()
		require.NoError(t, s.Initialize(root))

		info, err := os.Stat(filepath.Join(root, indexSubdir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("first initialization wins", func(t *testing.T) {
		dir1, dir2 := t.TempDir(), t.TempDir()
		s := NewDiskStore()
		require.NoError(t, s.Initialize(dir1))
		require.NoError(t, s.Initialize(dir2), "second call is a successful no-op")

		sh := testShard("/src/a.c", "x")
		require.NoError(t, s.Store(ctx, "/src/a.c", sh))

		entries, err := os.ReadDir(filepath.Join(dir1, indexSubdir))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "shard must land under the first root")

		_, err = os.ReadDir(filepath.Join(dir2, indexSubdir))
		assert.Error(t, err, "second root must stay untouched")
	})

	t.Run("operations before initialize fail gracefully", func(t *testing.T) {
		s := NewDiskStore()
		err := s.Store(ctx, "/src/a.c", testShard("/src/a.c", "x"))
		assert.ErrorIs(t, err, ErrNotInitialized)

		_, err = s.Retrieve(ctx, "/src/a.c", types.Digest{})
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("failed initialization disables the store", func(t *testing.T) {
		root := t.TempDir()
		// Occupy the reserved name with a regular file so MkdirAll fails.
		require.NoError(t, os.WriteFile(filepath.Join(root, indexSubdir), []byte("x"), 0644))

		s := NewDiskStore()
		require.Error(t, s.Initialize(root))

		err := s.Initialize(t.TempDir())
		assert.ErrorIs(t, err, ErrNotInitialized, "store stays disabled after first failure")
	})

	t.Run("concurrent initialize and store", func(t *testing.T) {
		root := t.TempDir()
		s := NewDiskStore()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Initialize(root)
				// Races the first initialization; must either succeed or
				// fail with ErrNotInitialized, never corrupt state.
				err := s.Store(ctx, "/src/a.c", testShard("/src/a.c", "x"))
				if err != nil {
					assert.ErrorIs(t, err, ErrNotInitialized)
				}
			}()
		}
		wg.Wait()

		require.NoError(t, s.Initialize(root))
		require.NoError(t, s.Store(ctx, "/src/a.c", testShard("/src/a.c", "x")))
	})
}

func TestDiskStoreCorruptShardIsStale(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewDiskStore()
	require.NoError(t, s.Initialize(root))

	sh := testShard("/src/a.c", "x")
	require.NoError(t, s.Store(ctx, "/src/a.c", sh))

	// Scribble over the stored shard.
	dir := filepath.Join(root, indexSubdir)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("garbage"), 0644))

	_, err = s.Retrieve(ctx, "/src/a.c", sh.Digest)
	assert.ErrorIs(t, err, ErrStale)
}
