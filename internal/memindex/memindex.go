package memindex

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/cindex-mcp/pkg/types"
)

// contribution is one file's slice of the index.
type contribution struct {
	symbols types.SymbolSlab
	refs    types.RefSlab
}

// Index stores per-file contributions and republishes them as immutable
// snapshots. Update/Remove/Publish are called by the merge step; Snapshot
// may be called concurrently from any goroutine.
type Index struct {
	mu    sync.Mutex
	files map[string]contribution
	snap  atomic.Pointer[Snapshot]
}

// New creates an empty index with an empty published snapshot.
func New() *Index {
	ix := &Index{files: make(map[string]contribution)}
	ix.snap.Store(&Snapshot{refs: map[string][]types.Ref{}})
	return ix
}

// Update replaces the contribution for file wholesale. The change is not
// visible to readers until Publish.
func (ix *Index) Update(file string, symbols types.SymbolSlab, refs types.RefSlab) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.files[file] = contribution{symbols: symbols, refs: refs}
}

// Remove drops the contribution for file. The change is not visible to
// readers until Publish.
func (ix *Index) Remove(file string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.files, file)
}

// Publish rebuilds the read-only snapshot from the current contributions and
// swaps it in. Snapshots handed out earlier remain valid.
func (ix *Index) Publish() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	snap := &Snapshot{
		refs:  make(map[string][]types.Ref),
		files: len(ix.files),
	}
	for _, c := range ix.files {
		snap.symbols = append(snap.symbols, c.symbols.Symbols()...)
		for _, r := range c.refs.Refs() {
			snap.refs[r.Symbol] = append(snap.refs[r.Symbol], r)
		}
	}
	sort.Slice(snap.symbols, func(i, j int) bool {
		a, b := snap.symbols[i], snap.symbols[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.File < b.File
	})

	ix.snap.Store(snap)
}

// Snapshot returns the most recently published snapshot. Never nil.
func (ix *Index) Snapshot() *Snapshot {
	return ix.snap.Load()
}

// Snapshot is an immutable view of the published index, safe for
// concurrent use.
type Snapshot struct {
	symbols []types.Symbol // sorted by (name, file)
	refs    map[string][]types.Ref
	files   int
}

// FileCount returns the number of files contributing to the snapshot.
func (s *Snapshot) FileCount() int {
	return s.files
}

// SymbolCount returns the total number of symbols in the snapshot.
func (s *Snapshot) SymbolCount() int {
	return len(s.symbols)
}

// FindSymbols returns up to limit symbols whose name contains query
// (case-insensitive). limit <= 0 means no limit.
func (s *Snapshot) FindSymbols(query string, limit int) []types.Symbol {
	q := strings.ToLower(query)
	var out []types.Symbol
	for _, sym := range s.symbols {
		if !strings.Contains(strings.ToLower(sym.Name), q) {
			continue
		}
		out = append(out, sym)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Refs returns up to limit references to the symbol name. limit <= 0 means
// no limit. Callers must not mutate the returned slice.
func (s *Snapshot) Refs(name string, limit int) []types.Ref {
	refs := s.refs[name]
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs
}
