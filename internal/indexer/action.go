package indexer

import (
	"context"
	"os"

	"github.com/dshills/cindex-mcp/internal/compiledb"
	"github.com/dshills/cindex-mcp/pkg/types"
)

// FileResult is one file's contribution from a single indexing run: the
// content digest observed and the symbols and refs extracted.
type FileResult struct {
	Digest  types.Digest
	Symbols types.SymbolSlab
	Refs    types.RefSlab
}

// Result carries everything one indexing run discovered. A translation
// unit's indexing touches its main file and any files it includes
// transitively, so PerFile usually has more than one entry.
type Result struct {
	MainFile string
	PerFile  map[string]FileResult
}

// Invocation is the input to one indexing run. ResourceDir and URISchemes
// are passed through from configuration untouched; the pipeline does not
// interpret them.
type Invocation struct {
	Cmd         compiledb.CompileCommand
	ResourceDir string
	URISchemes  []string
}

// Action runs the static indexing of one translation unit. The pipeline
// treats it as an opaque, synchronous, CPU-bound operation; an error aborts
// only the job that invoked it.
type Action interface {
	Index(ctx context.Context, inv Invocation) (*Result, error)
}

// FileReader supplies file contents for digesting. Injected so tests and
// tracing wrappers can interpose; the pipeline never touches the filesystem
// directly.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads from the local filesystem.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
