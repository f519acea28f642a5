// Package memindex provides the in-memory published index over per-file
// indexing contributions.
//
// The index keeps one contribution (symbol slab + ref slab) per file. The
// merge step replaces contributions wholesale and then republishes a
// read-only Snapshot through an atomic pointer swap, so queries never block
// on merges and always observe a complete, consistent snapshot:
//
//	ix := memindex.New()
//	ix.Update("/src/a.c", symbols, refs)
//	ix.Publish()
//
//	snap := ix.Snapshot()
//	for _, sym := range snap.FindSymbols("parse", 20) {
//	    fmt.Println(sym.Name, sym.File)
//	}
//
// A snapshot obtained before a merge remains valid (and unchanged) after it.
package memindex
