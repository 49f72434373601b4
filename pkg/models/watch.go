package models

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// LoaderFunc reads a mesh file.
type LoaderFunc func(path string) (*MeshData, error)

// Watcher reloads a mesh file into a Store whenever it changes on disk.
// A reload that fails to parse or validate is logged and the previous mesh
// stays active.
type Watcher struct {
	Load   LoaderFunc // Defaults to Load
	Logger *slog.Logger

	path    string
	store   *Store
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching path. The containing directory is watched so
// editors that save by rename are picked up.
func NewWatcher(path string, store *Store) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		Load:    Load,
		Logger:  slog.Default(),
		path:    abs,
		store:   store,
		watcher: fw,
	}, nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("mesh watcher error", "path", w.path, "error", err)
		}
	}
}

// Reload loads the file once and swaps it into the store.
func (w *Watcher) Reload() {
	m, err := w.Load(w.path)
	if err == nil {
		err = w.store.Replace(m)
	}
	if err != nil {
		w.Logger.Warn("mesh reload failed, keeping previous mesh", "path", w.path, "error", err)
		return
	}
	w.Logger.Info("mesh reloaded", "path", w.path, "triangles", m.TriangleCount())
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
