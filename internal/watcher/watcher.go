// Package watcher turns filesystem notifications on the upload root into
// broadcaster events.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/debtcoder/debtcoder/internal/events"
	"github.com/debtcoder/debtcoder/internal/logging"
	"github.com/debtcoder/debtcoder/internal/metrics"
	"github.com/debtcoder/debtcoder/internal/store"
)

// Watcher watches the upload root and publishes change events.
type Watcher struct {
	store       *store.Store
	broadcaster *events.Broadcaster
	fsw         *fsnotify.Watcher
}

// New creates a watcher over the store's root.
func New(st *store.Store, b *events.Broadcaster) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{store: st, broadcaster: b, fsw: fsw}
	if err := w.addRecursive(st.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive watches dir and every subdirectory below it. fsnotify has
// no recursive mode, so new directories are added as create events arrive.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if werr := w.fsw.Add(path); werr != nil {
			return fmt.Errorf("watch %s: %w", path, werr)
		}
		return nil
	})
}

// Start runs the event loop until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// Atomic writes land via temp-file rename; skip the temp names so
	// subscribers only see the final paths.
	if strings.HasPrefix(filepath.Base(ev.Name), ".doja-") {
		return
	}

	var eventType string
	switch {
	case ev.Op.Has(fsnotify.Create):
		eventType = events.EventCreate
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				logging.Warn("watch new directory", zap.Error(err))
			}
		}
	case ev.Op.Has(fsnotify.Write):
		eventType = events.EventModify
	case ev.Op.Has(fsnotify.Remove):
		eventType = events.EventDelete
	case ev.Op.Has(fsnotify.Rename):
		eventType = events.EventRename
	default:
		return
	}

	var size int64
	if info, err := os.Stat(ev.Name); err == nil && !info.IsDir() {
		size = info.Size()
	}
	w.broadcaster.Publish(events.Event{
		Type: eventType,
		Path: w.store.Rel(ev.Name),
		Size: size,
	})

	files, bytes := w.store.Usage()
	metrics.SetStoreUsage(files, bytes)
}
