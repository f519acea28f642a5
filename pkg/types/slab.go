package types

// SymbolSlab is an immutable batch of symbol definitions produced by one
// indexing run for one file. It is created once by a SymbolSlabBuilder and
// never mutated afterwards; ownership transfers to whoever consumes it.
type SymbolSlab struct {
	symbols []Symbol
}

// Symbols returns the slab contents. Callers must not mutate the returned
// slice.
func (s SymbolSlab) Symbols() []Symbol {
	return s.symbols
}

// Len returns the number of symbols in the slab.
func (s SymbolSlab) Len() int {
	return len(s.symbols)
}

// SymbolSlabBuilder accumulates symbols and freezes them into a SymbolSlab.
// The zero value is ready to use. Not safe for concurrent use.
type SymbolSlabBuilder struct {
	symbols []Symbol
}

// Add appends a symbol to the slab under construction.
func (b *SymbolSlabBuilder) Add(sym Symbol) {
	b.symbols = append(b.symbols, sym)
}

// Build freezes the accumulated symbols. The builder must not be reused.
func (b *SymbolSlabBuilder) Build() SymbolSlab {
	slab := SymbolSlab{symbols: b.symbols}
	b.symbols = nil
	return slab
}

// RefSlab is an immutable batch of symbol references produced by one
// indexing run for one file.
type RefSlab struct {
	refs []Ref
}

// Refs returns the slab contents. Callers must not mutate the returned slice.
func (s RefSlab) Refs() []Ref {
	return s.refs
}

// Len returns the number of refs in the slab.
func (s RefSlab) Len() int {
	return len(s.refs)
}

// RefSlabBuilder accumulates refs and freezes them into a RefSlab.
// The zero value is ready to use. Not safe for concurrent use.
type RefSlabBuilder struct {
	refs []Ref
}

// Add appends a ref to the slab under construction.
func (b *RefSlabBuilder) Add(ref Ref) {
	b.refs = append(b.refs, ref)
}

// Build freezes the accumulated refs. The builder must not be reused.
func (b *RefSlabBuilder) Build() RefSlab {
	slab := RefSlab{refs: b.refs}
	b.refs = nil
	return slab
}
