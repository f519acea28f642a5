// Package shard persists per-file index contributions so they survive
// process restarts.
//
// A shard is one file's slice of the index: its symbol slab, its ref slab,
// and the content digest they were derived from. Stores are keyed by the
// file's absolute path; implementations derive a filesystem-safe identifier
// from it.
//
// # Store Contract
//
// Initialize binds the store to a root directory. The first successful call
// wins; every later call is a no-op returning success. A failed first
// initialization permanently disables the store instance, and Store/Retrieve
// return ErrNotInitialized from then on.
//
// Retrieve fails with ErrNotFound when no shard exists for the file and with
// ErrStale when the stored shard was written under a different digest than
// expected. Callers treat both as cache misses and fall back to re-indexing.
//
// # Implementations
//
//   - DiskStore: one file per shard inside a reserved ".cindex" subdirectory,
//     written atomically (write-new-then-rename), zstd-compressed payload
//     with an embedded checksum verified on read.
//   - SQLiteStore: one row per shard in a SQLite database, same payload
//     encoding. The driver is selected at build time (see driver_cgo.go and
//     driver_purego.go).
//   - NullStore: discards everything; disables persistence without
//     special-casing callers.
//
// All implementations are safe for concurrent use.
package shard
