package shard

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cindex-mcp/pkg/types"
)

func testShard(file, content string) *Shard {
	var sb types.SymbolSlabBuilder
	sb.Add(types.Symbol{
		Name: "init_" + filepath.Base(file),
		Kind: types.KindFunction,
		File: file,
		Def:  types.Position{Line: 1, Column: 1},
	})
	var rb types.RefSlabBuilder
	rb.Add(types.Ref{
		Symbol: "init_" + filepath.Base(file),
		Kind:   types.RefDefinition,
		File:   file,
		Pos:    types.Position{Line: 1, Column: 1},
	})
	return &Shard{
		Symbols: sb.Build(),
		Refs:    rb.Build(),
		Digest:  types.DigestOf([]byte(content)),
	}
}

func TestIdentifierFor(t *testing.T) {
	t.Run("filesystem safe", func(t *testing.T) {
		id := identifierFor("/home/user/project/src/main.c")
		assert.NotContains(t, id, "/")
		assert.True(t, strings.HasPrefix(id, "main.c."))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, identifierFor("/a/b.c"), identifierFor("/a/b.c"))
	})

	t.Run("distinguishes equal base names", func(t *testing.T) {
		assert.NotEqual(t, identifierFor("/a/x/main.c"), identifierFor("/a/y/main.c"))
	})
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s NullStore

	require.NoError(t, s.Initialize(t.TempDir()))
	require.NoError(t, s.Store(ctx, "/src/a.c", testShard("/src/a.c", "content")))

	_, err := s.Retrieve(ctx, "/src/a.c", types.DigestOf([]byte("content")))
	assert.ErrorIs(t, err, ErrNotFound)
}
