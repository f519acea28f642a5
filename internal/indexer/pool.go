package indexer

// run is the main loop executed by each worker: wait for work or stop,
// dequeue FIFO, execute outside any lock, notify idle-waiters.
func (b *BackgroundIndex) run() error {
	for {
		b.queueMu.Lock()
		for len(b.queue) == 0 && !b.stopped {
			b.queueCV.Wait()
		}
		if len(b.queue) == 0 {
			// Stopped and drained.
			b.queueMu.Unlock()
			return nil
		}
		cmd := b.queue[0]
		b.queue = b.queue[1:]
		b.active++
		b.queueMu.Unlock()

		if err := b.index(cmd); err != nil {
			b.jobsFailed.Add(1)
			b.log.Error("indexing failed", "file", cmd.MainFile(), "error", err)
		}
		b.jobsRun.Add(1)

		b.queueMu.Lock()
		b.active--
		b.queueMu.Unlock()
		b.queueCV.Broadcast()
	}
}

// Stop causes workers to exit after their current job; pending jobs are
// discarded without executing. Does not wait; use Close for that.
func (b *BackgroundIndex) Stop() {
	b.queueMu.Lock()
	b.stopped = true
	b.queue = nil
	b.queueMu.Unlock()
	b.queueCV.Broadcast()
}

// Close stops the pool and blocks until every worker has exited, which
// means every in-flight job has completed (and its result merged).
func (b *BackgroundIndex) Close() error {
	b.Stop()
	return b.workers.Wait()
}

// IsIdle reports whether the queue is empty and no job is executing.
func (b *BackgroundIndex) IsIdle() bool {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	return len(b.queue) == 0 && b.active == 0
}

// BlockUntilIdle waits until the queue is empty and the active-job count is
// zero, without requesting stop. Intended for deterministic testing.
func (b *BackgroundIndex) BlockUntilIdle() {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	for len(b.queue) > 0 || b.active > 0 {
		b.queueCV.Wait()
	}
}

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	Queued         int   `json:"queued"`
	Active         int   `json:"active"`
	Idle           bool  `json:"idle"`
	IndexedFiles   int   `json:"indexed_files"`
	JobsRun        int64 `json:"jobs_run"`
	JobsFailed     int64 `json:"jobs_failed"`
	FilesMerged    int64 `json:"files_merged"`
	FilesUnchanged int64 `json:"files_unchanged"`
	ShardHits      int64 `json:"shard_hits"`
	ShardMisses    int64 `json:"shard_misses"`
}

// Stats returns current pipeline counters.
func (b *BackgroundIndex) Stats() Stats {
	b.queueMu.Lock()
	queued, active := len(b.queue), b.active
	b.queueMu.Unlock()

	return Stats{
		Queued:         queued,
		Active:         active,
		Idle:           queued == 0 && active == 0,
		IndexedFiles:   b.IndexedFileCount(),
		JobsRun:        b.jobsRun.Load(),
		JobsFailed:     b.jobsFailed.Load(),
		FilesMerged:    b.filesMerged.Load(),
		FilesUnchanged: b.filesUnchanged.Load(),
		ShardHits:      b.shardHits.Load(),
		ShardMisses:    b.shardMisses.Load(),
	}
}
