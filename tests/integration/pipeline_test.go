package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/cindex-mcp/internal/compiledb"
	"github.com/dshills/cindex-mcp/internal/indexer"
	"github.com/dshills/cindex-mcp/internal/lexindex"
	"github.com/dshills/cindex-mcp/internal/memindex"
	"github.com/dshills/cindex-mcp/internal/shard"
)

// PipelineTestSuite exercises the whole pipeline: compilation database,
// background workers, lexical indexing, in-memory index, and shard
// persistence across a restart.
type PipelineTestSuite struct {
	suite.Suite
	root string
	db   *compiledb.JSONDatabase
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

// SetupTest copies the fixture project into a writable root so shard
// files never land in the source tree.
func (s *PipelineTestSuite) SetupTest() {
	wd, err := os.Getwd()
	s.Require().NoError(err)
	fixtures := filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	s.root = s.T().TempDir()
	s.Require().NoError(os.MkdirAll(filepath.Join(s.root, "include"), 0755))
	for _, rel := range []string{"main.c", "mathlib.c", "util.h", filepath.Join("include", "mathlib.h")} {
		data, err := os.ReadFile(filepath.Join(fixtures, rel))
		s.Require().NoError(err)
		s.Require().NoError(os.WriteFile(filepath.Join(s.root, rel), data, 0644))
	}

	ccJSON := `[
  {"directory": "` + s.root + `", "file": "main.c", "arguments": ["cc", "-c", "-Iinclude", "main.c"]},
  {"directory": "` + s.root + `", "file": "mathlib.c", "arguments": ["cc", "-c", "-Iinclude", "mathlib.c"]}
]`
	ccPath := filepath.Join(s.root, "compile_commands.json")
	s.Require().NoError(os.WriteFile(ccPath, []byte(ccJSON), 0644))

	s.db, err = compiledb.Load(ccPath)
	s.Require().NoError(err)
}

// runAll indexes the whole database through a fresh pipeline and returns
// the populated index and the closed-over background instance.
func (s *PipelineTestSuite) runAll(store shard.Store) (*memindex.Index, *indexer.BackgroundIndex) {
	index := memindex.New()
	bg := indexer.New(context.Background(), lexindex.New(nil), index, &indexer.Config{
		Workers: 4,
		Store:   store,
	})
	bg.EnqueueAll(s.root, s.db)
	bg.BlockUntilIdle()
	return index, bg
}

func (s *PipelineTestSuite) TestFullPipeline() {
	store := shard.NewDiskStore()
	s.Require().NoError(store.Initialize(s.root))

	index, bg := s.runAll(store)
	defer func() { _ = bg.Close() }()

	snap := index.Snapshot()

	// main.c, mathlib.c, util.h, include/mathlib.h
	s.Equal(4, snap.FileCount())

	for _, name := range []string{"main", "sum_all", "scale", "FACTOR", "COUNT", "counter_t"} {
		s.NotEmpty(snap.FindSymbols(name, 10), "expected symbol %s", name)
	}

	// Declaration, definition, and call site
	s.Len(snap.Refs("sum_all", 100), 3)

	stats := bg.Stats()
	s.Equal(int64(2), stats.JobsRun)
	s.Equal(int64(0), stats.JobsFailed)
	s.True(stats.Idle)

	// Shards were persisted under the reserved subdirectory
	entries, err := os.ReadDir(filepath.Join(s.root, ".cindex"))
	s.Require().NoError(err)
	s.NotEmpty(entries)
}

// failAction stands in for the indexing action after a restart. Any
// invocation means the shard fast path did not cover the job.
type failAction struct{}

func (failAction) Index(context.Context, indexer.Invocation) (*indexer.Result, error) {
	return nil, errors.New("unexpected reindex")
}

func (s *PipelineTestSuite) TestRestartLoadsShards() {
	store := shard.NewDiskStore()
	s.Require().NoError(store.Initialize(s.root))
	index, bg := s.runAll(store)
	firstSymbols := index.Snapshot().SymbolCount()
	s.Require().NoError(bg.Close())

	// Fresh process: empty digest table, same shard directory, an action
	// that fails if anything is reindexed.
	store2 := shard.NewDiskStore()
	s.Require().NoError(store2.Initialize(s.root))
	index2 := memindex.New()
	bg2 := indexer.New(context.Background(), failAction{}, index2, &indexer.Config{
		Workers: 2,
		Store:   store2,
	})
	defer func() { _ = bg2.Close() }()

	bg2.EnqueueAll(s.root, s.db)
	bg2.BlockUntilIdle()

	stats := bg2.Stats()
	s.Equal(int64(0), stats.JobsFailed)
	s.Equal(int64(2), stats.ShardHits)
	s.Equal(firstSymbols, index2.Snapshot().SymbolCount())
}

func (s *PipelineTestSuite) TestRestartReindexesChangedFiles() {
	store := shard.NewDiskStore()
	s.Require().NoError(store.Initialize(s.root))
	_, bg := s.runAll(store)
	s.Require().NoError(bg.Close())

	// A changed header invalidates the fast path for every unit that
	// includes it.
	header := filepath.Join(s.root, "include", "mathlib.h")
	s.Require().NoError(os.WriteFile(header, []byte("#define FACTOR 3\nint sum_all(int *vals, int n);\nint scale(int x);\nint cube(int x);\n"), 0644))

	store2 := shard.NewDiskStore()
	s.Require().NoError(store2.Initialize(s.root))
	index2, bg2 := s.runAll(store2)
	defer func() { _ = bg2.Close() }()

	stats := bg2.Stats()
	s.Equal(int64(2), stats.JobsRun)
	s.Equal(int64(0), stats.ShardHits)
	s.NotEmpty(index2.Snapshot().FindSymbols("FACTOR", 10))
}

func (s *PipelineTestSuite) TestReindexUnchangedIsCheap() {
	store := shard.NewDiskStore()
	s.Require().NoError(store.Initialize(s.root))
	index, bg := s.runAll(store)
	defer func() { _ = bg.Close() }()

	merged := bg.Stats().FilesMerged

	bg.EnqueueAll(s.root, s.db)
	bg.BlockUntilIdle()

	stats := bg.Stats()
	s.Equal(merged, stats.FilesMerged)
	s.Positive(stats.FilesUnchanged)
	s.Equal(4, index.Snapshot().FileCount())
}

func (s *PipelineTestSuite) TestSQLiteBackend() {
	store := shard.NewSQLiteStore()
	s.Require().NoError(store.Initialize(s.root))
	index, bg := s.runAll(store)
	s.Require().NoError(bg.Close())
	s.Require().NoError(store.Close())
	firstSymbols := index.Snapshot().SymbolCount()

	store2 := shard.NewSQLiteStore()
	s.Require().NoError(store2.Initialize(s.root))
	defer func() { _ = store2.Close() }()
	index2 := memindex.New()
	bg2 := indexer.New(context.Background(), failAction{}, index2, &indexer.Config{
		Workers: 2,
		Store:   store2,
	})
	defer func() { _ = bg2.Close() }()

	bg2.EnqueueAll(s.root, s.db)
	bg2.BlockUntilIdle()

	s.Equal(int64(0), bg2.Stats().JobsFailed)
	s.Equal(firstSymbols, index2.Snapshot().SymbolCount())
}
