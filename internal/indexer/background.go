package indexer

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/cindex-mcp/internal/compiledb"
	"github.com/dshills/cindex-mcp/internal/shard"
	"github.com/dshills/cindex-mcp/pkg/types"
)

// Sink receives merged index contributions. Update/Remove stage per-file
// replacements; Publish makes staged changes visible to readers. The merge
// step calls all three under its own lock, so implementations only need to
// be safe against concurrent readers.
type Sink interface {
	Update(file string, symbols types.SymbolSlab, refs types.RefSlab)
	Remove(file string)
	Publish()
}

// Config contains configuration for the background index
type Config struct {
	Workers int // Number of workers (default: runtime.NumCPU())

	// Store persists per-file shards. Nil disables persistence.
	Store shard.Store

	// FS supplies file contents for the shard fast path. Nil means the
	// local filesystem.
	FS FileReader

	// ResourceDir and URISchemes are passed through to the indexing
	// action untouched.
	ResourceDir string
	URISchemes  []string

	// Logger receives job failures and soft store failures. Nil discards.
	Logger *slog.Logger
}

// BackgroundIndex owns the job queue, the worker pool, the digest table of
// what has already been indexed, and the shard store. Construction starts
// the workers; Close stops them and blocks until all in-flight jobs finish.
type BackgroundIndex struct {
	action      Action
	sink        Sink
	store       shard.Store
	fs          FileReader
	log         *slog.Logger
	resourceDir string
	uriSchemes  []string

	// Background context propagated to every job for cancellation and
	// tracing. Held explicitly rather than ambiently so the same logic is
	// testable without a real tracing backend.
	ctx context.Context

	// Index state. digests maps absolute file path to the digest its
	// published contribution was produced under. Mutated only inside the
	// merge step, under digestsMu.
	digestsMu sync.Mutex
	digests   map[string]types.Digest

	// Queue management. queueCV is signaled on push, on stop, and on job
	// completion. Only idle when the queue is empty *and* active == 0.
	queueMu sync.Mutex
	queueCV *sync.Cond
	queue   []compiledb.CompileCommand
	active  int
	stopped bool

	workers *errgroup.Group

	// Counters, exposed via Stats.
	jobsRun        atomic.Int64
	jobsFailed     atomic.Int64
	filesMerged    atomic.Int64
	filesUnchanged atomic.Int64
	shardHits      atomic.Int64
	shardMisses    atomic.Int64
}

// New creates a background index writing merged results into sink and
// starts the worker pool. ctx is the background context threaded through
// every job; cancelling it aborts in-flight actions but does not stop the
// pool (use Stop/Close for that).
func New(ctx context.Context, action Action, sink Sink, cfg *Config) *BackgroundIndex {
	if cfg == nil {
		cfg = &Config{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	store := cfg.Store
	if store == nil {
		store = shard.NullStore{}
	}
	fs := cfg.FS
	if fs == nil {
		fs = OSFileReader{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &BackgroundIndex{
		action:      action,
		sink:        sink,
		store:       store,
		fs:          fs,
		log:         logger,
		resourceDir: cfg.ResourceDir,
		uriSchemes:  cfg.URISchemes,
		ctx:         ctx,
		digests:     make(map[string]types.Digest),
		workers:     &errgroup.Group{},
	}
	b.queueCV = sync.NewCond(&b.queueMu)

	for i := 0; i < workers; i++ {
		b.workers.Go(b.run)
	}
	return b
}

// Enqueue schedules one translation unit for background indexing. It never
// blocks on indexing completion, only briefly on the queue lock. Jobs
// enqueued after Stop are dropped.
func (b *BackgroundIndex) Enqueue(directory string, cmd compiledb.CompileCommand) {
	if cmd.Directory == "" {
		cmd.Directory = directory
	}

	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	if b.stopped {
		return
	}
	b.queue = append(b.queue, cmd)
	b.queueCV.Signal()
}

// EnqueueAll schedules every translation unit in the compilation database.
// Not transactional: an error during enumeration leaves already-enqueued
// jobs queued.
func (b *BackgroundIndex) EnqueueAll(directory string, db compiledb.Database) {
	for _, cmd := range db.All() {
		b.Enqueue(directory, cmd)
	}
}

// index processes one dequeued job.
func (b *BackgroundIndex) index(cmd compiledb.CompileCommand) error {
	main := cmd.MainFile()

	if b.loadFromShards(main) {
		return nil
	}

	res, err := b.action.Index(b.ctx, Invocation{
		Cmd:         cmd,
		ResourceDir: b.resourceDir,
		URISchemes:  b.uriSchemes,
	})
	if err != nil {
		return err
	}
	b.update(res, true)
	return nil
}

// loadFromShards attempts to serve a translation unit from the shard store
// instead of running the action: possible only when this process has not
// indexed the main file yet, the stored shard matches the file's current
// content, and every dependency recorded in the shard is likewise
// unchanged and retrievable. Any failure is a cache miss.
func (b *BackgroundIndex) loadFromShards(main string) bool {
	b.digestsMu.Lock()
	_, indexed := b.digests[main]
	b.digestsMu.Unlock()
	if indexed {
		return false
	}

	content, err := b.fs.ReadFile(main)
	if err != nil {
		return false
	}
	mainShard, err := b.store.Retrieve(b.ctx, main, types.DigestOf(content))
	if err != nil {
		b.shardMisses.Add(1)
		return false
	}

	res := &Result{
		MainFile: main,
		PerFile: map[string]FileResult{
			main: {Digest: mainShard.Digest, Symbols: mainShard.Symbols, Refs: mainShard.Refs},
		},
	}
	for dep, want := range mainShard.Deps {
		if dep == main {
			continue
		}
		depContent, err := b.fs.ReadFile(dep)
		if err != nil || types.DigestOf(depContent) != want {
			b.shardMisses.Add(1)
			return false
		}
		depShard, err := b.store.Retrieve(b.ctx, dep, want)
		if err != nil {
			b.shardMisses.Add(1)
			return false
		}
		res.PerFile[dep] = FileResult{Digest: depShard.Digest, Symbols: depShard.Symbols, Refs: depShard.Refs}
	}

	b.shardHits.Add(1)
	b.update(res, false)
	return true
}

// update merges one indexing result. The digest comparison, the table
// update, and the sink publish form one critical section so concurrent
// merges touching the same files serialize and at most one merge publishes
// a given (file, digest) pair.
func (b *BackgroundIndex) update(res *Result, persist bool) {
	b.digestsMu.Lock()
	defer b.digestsMu.Unlock()

	changed := 0
	for path, fr := range res.PerFile {
		if prev, ok := b.digests[path]; ok && prev == fr.Digest {
			b.filesUnchanged.Add(1)
			continue
		}
		b.sink.Update(path, fr.Symbols, fr.Refs)
		b.digests[path] = fr.Digest
		changed++
		b.filesMerged.Add(1)

		if !persist {
			continue
		}
		sh := &shard.Shard{Symbols: fr.Symbols, Refs: fr.Refs, Digest: fr.Digest}
		if path == res.MainFile {
			sh.Deps = make(map[string]types.Digest, len(res.PerFile))
			for dep, depRes := range res.PerFile {
				sh.Deps[dep] = depRes.Digest
			}
		}
		if err := b.store.Store(b.ctx, path, sh); err != nil {
			// Soft failure: the file stays merged, just unpersisted.
			b.log.Warn("failed to store shard", "file", path, "error", err)
		}
	}
	if changed > 0 {
		b.sink.Publish()
	}
}

// IndexedDigest returns the digest recorded for file, if any. Intended for
// tests and status reporting.
func (b *BackgroundIndex) IndexedDigest(file string) (types.Digest, bool) {
	b.digestsMu.Lock()
	defer b.digestsMu.Unlock()
	d, ok := b.digests[file]
	return d, ok
}

// IndexedFileCount returns the number of files with a recorded digest.
func (b *BackgroundIndex) IndexedFileCount() int {
	b.digestsMu.Lock()
	defer b.digestsMu.Unlock()
	return len(b.digests)
}
