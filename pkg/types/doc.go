// Package types provides shared type definitions for the CIndex MCP server.
//
// This package defines the domain types that flow through the background
// indexing pipeline: content digests, symbols, references, and the immutable
// slabs that carry one indexing run's results from the indexing action to the
// merge step.
//
// # Core Types
//
// Digest is a fixed-size SHA-256 content hash used both for change detection
// (has this file's content changed since it was last indexed?) and for
// integrity verification of persisted index shards:
//
//	d := types.DigestOf(fileContent)
//	if d != previous {
//	    // re-index
//	}
//
// Symbol represents one definition (function, type, variable, macro)
// discovered in a source file:
//
//	sym := types.Symbol{
//	    Name: "parse_args",
//	    Kind: types.KindFunction,
//	    File: "/src/args.c",
//	    Def:  types.Position{Line: 42, Column: 5},
//	}
//
// Ref represents one occurrence of a symbol name at a location.
//
// # Slabs
//
// SymbolSlab and RefSlab are immutable batches produced once per indexing run
// and never mutated afterwards. Ownership transfers to the merge step, which
// either publishes them into the in-memory index or discards them. Build them
// with the corresponding builders:
//
//	var b types.SymbolSlabBuilder
//	b.Add(sym)
//	slab := b.Build()
//
// After Build the builder must not be reused.
package types
