// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/asset"
)

// Reloader keeps a built pipeline in sync with its asset file. The
// initial Load is fatal on failure; later reloads never destroy working
// state — a failed reload leaves the previous graph active, counts the
// failure, and reports it through the builder's last-error string.
type Reloader struct {
	builder *Builder
	path    string
	width   uint32
	height  uint32

	mu       sync.Mutex
	graph    *framegraph.Graph
	failures int

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewReloader creates a reloader for the asset file at path, built at
// the given target size.
func NewReloader(b *Builder, path string, width, height uint32) *Reloader {
	return &Reloader{builder: b, path: path, width: width, height: height}
}

// Load performs the initial build. A failure here is fatal: there is no
// previous good state to fall back to.
func (r *Reloader) Load() error {
	p, err := asset.LoadFile(r.path)
	if err != nil {
		return err
	}
	g, err := r.builder.Build(p, r.width, r.height)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.graph = g
	r.mu.Unlock()
	return nil
}

// Reload rebuilds from the file on disk. On failure the active graph is
// left untouched and the failure counter increments; only a successful
// build swaps the graph.
func (r *Reloader) Reload() error {
	log := framegraph.Logger()

	p, err := asset.LoadFile(r.path)
	if err == nil {
		var g *framegraph.Graph
		if g, err = r.builder.Build(p, r.width, r.height); err == nil {
			r.mu.Lock()
			r.graph = g
			r.mu.Unlock()
			log.Info("pipeline: reloaded", "path", r.path)
			return nil
		}
	}

	r.mu.Lock()
	r.failures++
	n := r.failures
	r.mu.Unlock()
	log.Warn("pipeline: reload failed, keeping previous graph",
		"path", r.path, "failures", n, "error", err)
	return fmt.Errorf("pipeline: reload %s: %w", r.path, err)
}

// Graph returns the currently active graph.
func (r *Reloader) Graph() *framegraph.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph
}

// Failures returns the number of failed reloads since startup.
func (r *Reloader) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Watch starts watching the asset file and reloads on every write.
// Editors typically replace files by rename, so the containing directory
// is watched and events are filtered to the asset's name.
func (r *Reloader) Watch() error {
	if r.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipeline: watch %s: %w", r.path, err)
	}
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		w.Close()
		return fmt.Errorf("pipeline: watch %s: %w", r.path, err)
	}
	r.watcher = w
	r.done = make(chan struct{})

	go func() {
		log := framegraph.Logger()
		base := filepath.Base(r.path)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Reload errors are already counted and logged.
				_ = r.Reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("pipeline: watcher error", "path", r.path, "error", err)
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

// Close stops watching. Safe to call without a prior Watch.
func (r *Reloader) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.watcher = nil
	return err
}
