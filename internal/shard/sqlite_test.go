package shard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cindex-mcp/pkg/types"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore()
	require.NoError(t, s.Initialize(t.TempDir()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	orig := testShard("/src/a.cpp", "void f();")
	require.NoError(t, s.Store(ctx, "/src/a.cpp", orig))

	t.Run("matching digest returns shard unchanged", func(t *testing.T) {
		got, err := s.Retrieve(ctx, "/src/a.cpp", orig.Digest)
		require.NoError(t, err)
		assert.Equal(t, orig.Symbols.Symbols(), got.Symbols.Symbols())
		assert.Equal(t, orig.Refs.Refs(), got.Refs.Refs())
	})

	t.Run("different digest is stale", func(t *testing.T) {
		_, err := s.Retrieve(ctx, "/src/a.cpp", types.DigestOf([]byte("other")))
		assert.ErrorIs(t, err, ErrStale)
	})

	t.Run("missing shard is not found", func(t *testing.T) {
		_, err := s.Retrieve(ctx, "/src/missing.cpp", orig.Digest)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store overwrites prior shard", func(t *testing.T) {
		updated := testShard("/src/a.cpp", "void g();")
		require.NoError(t, s.Store(ctx, "/src/a.cpp", updated))

		got, err := s.Retrieve(ctx, "/src/a.cpp", updated.Digest)
		require.NoError(t, err)
		assert.Equal(t, updated.Digest, got.Digest)
	})
}

func TestSQLiteStoreInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("operations before initialize fail gracefully", func(t *testing.T) {
		s := NewSQLiteStore()
		err := s.Store(ctx, "/src/a.c", testShard("/src/a.c", "x"))
		assert.ErrorIs(t, err, ErrNotInitialized)

		_, err = s.Retrieve(ctx, "/src/a.c", types.Digest{})
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("first initialization wins", func(t *testing.T) {
		dir1, dir2 := t.TempDir(), t.TempDir()
		s := NewSQLiteStore()
		t.Cleanup(func() { _ = s.Close() })

		require.NoError(t, s.Initialize(dir1))
		require.NoError(t, s.Initialize(dir2))

		sh := testShard("/src/a.c", "x")
		require.NoError(t, s.Store(ctx, "/src/a.c", sh))
		_, err := s.Retrieve(ctx, "/src/a.c", sh.Digest)
		assert.NoError(t, err)
	})
}
