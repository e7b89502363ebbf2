// Package watcher submits media files dropped into a watch folder.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/recapd/recapd/internal/core/ports/driving"
)

// settleInterval is how often a new file's size is polled while a copy
// into the watch folder is still in progress.
const settleInterval = 200 * time.Millisecond

// mediaExtensions are the file extensions picked up from the watch
// folder. Anything else is ignored.
var mediaExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// Watcher monitors a directory and runs the pipeline for every media
// file that appears in it.
type Watcher struct {
	dir    string
	intake driving.IntakeService
	runner driving.PipelineRunner
	log    *logrus.Entry

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates a watcher for dir.
func New(dir string, intake driving.IntakeService, runner driving.PipelineRunner, log *logrus.Entry) *Watcher {
	return &Watcher{
		dir:      dir,
		intake:   intake,
		runner:   runner,
		log:      log.WithField("watch_dir", dir),
		inflight: make(map[string]bool),
	}
}

// Start watches until the context is cancelled. Files already present
// in the directory at startup are not submitted; only new arrivals
// are.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("creating watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.log.Info("watch folder active")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

// handleEvent submits newly created media files. Writes, removes, and
// renames are ignored: a create is the start of every drop, and the
// settle loop covers the writes that follow it.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if !w.wantsFile(event.Name) {
		return
	}

	w.mu.Lock()
	if w.inflight[event.Name] {
		w.mu.Unlock()
		return
	}
	w.inflight[event.Name] = true
	w.mu.Unlock()

	go w.submitWhenSettled(ctx, event.Name)
}

// wantsFile reports whether a path is a visible media file.
func (w *Watcher) wantsFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !mediaExtensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// submitWhenSettled waits for the file size to stop changing, then
// submits the file and runs the pipeline.
func (w *Watcher) submitWhenSettled(ctx context.Context, path string) {
	defer func() {
		w.mu.Lock()
		delete(w.inflight, path)
		w.mu.Unlock()
	}()

	if !w.waitSettled(ctx, path) {
		return
	}

	job, err := w.intake.SubmitPath(ctx, path)
	if err != nil {
		w.log.WithError(err).WithField("path", path).Error("submitting watched file")
		return
	}

	w.log.WithFields(logrus.Fields{
		"job_id": job.ID,
		"path":   path,
	}).Info("watched file submitted")

	w.runner.Run(ctx, job.ID)
}

// waitSettled polls the file size until two consecutive reads agree,
// so a file still being copied is not transcribed half-written.
func (w *Watcher) waitSettled(ctx context.Context, path string) bool {
	var lastSize int64 = -1
	ticker := time.NewTicker(settleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				// Removed before it settled.
				return false
			}
			if info.Size() == lastSize {
				return true
			}
			lastSize = info.Size()
		}
	}
}
