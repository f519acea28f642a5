// Package watcher re-triggers indexing when watched source files change.
//
// Changes are collected into a buffer and handed to the handler only after
// a debounce window passes without further events, so a burst of writes
// from an editor or a build produces one batch instead of one callback per
// write. The handler runs on a single goroutine.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Handler receives the debounced batch of changed file paths.
type Handler func(paths []string)

// Watcher watches a directory tree for file changes with debouncing.
// Safe for concurrent use.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	log      *slog.Logger

	group    *errgroup.Group
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher over the tree rooted at root. A nil logger
// discards. Call Start to begin watching.
func New(root string, debounce time.Duration, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		root:     root,
		fsw:      fsw,
		handler:  handler,
		debounce: debounce,
		log:      logger,
		group:    &errgroup.Group{},
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins delivering batches. It
// returns once registration completes; delivery happens in the background
// until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(d.Name()) && path != w.root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		w.fsw.Close()
		return err
	}

	w.group.Go(func() error {
		w.loop(ctx)
		return nil
	})
	return nil
}

// Stop stops watching and waits for the delivery goroutine to exit.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
	return w.group.Wait()
}

// loop collects events and flushes them after the debounce window.
func (w *Watcher) loop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		w.handler(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event, pending)
			if len(pending) > 0 {
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
				fire = timer.C
			}
		case <-fire:
			fire = nil
			flush()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// handleEvent folds one fsnotify event into the pending set, registering
// newly created directories as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	name := filepath.Base(event.Name)
	if skipDir(name) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	pending[event.Name] = true
}

// skipDir filters hidden directories and the reserved index directory.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".")
}
