// Package indexer runs the background indexing pipeline: a FIFO job queue
// consumed by a fixed worker pool, incremental updates driven by per-file
// content digests, and optional shard persistence so contributions survive
// restarts.
//
// # Basic Usage
//
//	ix := memindex.New()
//	bg := indexer.New(ctx, action, ix, &indexer.Config{
//	    Workers: runtime.NumCPU(),
//	    Store:   shard.NewDiskStore(),
//	})
//	defer bg.Close()
//
//	bg.EnqueueAll(buildDir, db)
//
// Indexing happens on background workers; symbols become queryable through
// the sink's snapshots sometime later. BlockUntilIdle exists for
// deterministic tests.
//
// # Incremental Updates
//
// One job indexes one translation unit, but change detection is scoped to
// individual files: a header shared by many translation units is merged once
// and skipped by every later job that re-parses it, because its digest in
// the table already matches. Files whose digest is unchanged cost no merge,
// no publish, and no shard write.
//
// # Concurrency
//
// Two disjoint locks: the queue lock guards scheduling metadata (queue
// contents, active count, stop flag), the digest-table lock serializes
// merges. No code path holds both. Jobs are dequeued FIFO but complete in
// any order; per-file updates are last-writer-wins by digest comparison
// under the digest-table lock, so no update is lost.
//
// # Shutdown
//
// Stop discards pending jobs and lets in-flight jobs run to completion
// (their results are still merged). Close stops and then blocks until every
// worker has exited.
//
// # Error Handling
//
// A job failure is logged and discarded; it never affects other jobs, the
// pool, or previously merged state. Shard store failures are soft: a failed
// retrieve falls back to re-indexing, a failed store just skips persistence.
package indexer
