// Package watch re-runs a job when any of a set of files changes.
package watch

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
)

// RunFunc is the job triggered by a change.
type RunFunc func(ctx context.Context) error

// Watcher debounces change events on a fixed set of files. Parent
// directories are watched so files replaced by editors keep being seen.
// Runs never overlap.
type Watcher struct {
	files    map[string]bool
	fs       *fsnotify.Watcher
	debounce time.Duration
	run      RunFunc
	runs     atomic.Int64
}

// New watches paths and calls run debounce after the last change.
func New(paths []string, debounce time.Duration, run RunFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{files: make(map[string]bool), fs: fw, debounce: debounce, run: run}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	return w, nil
}

// Runs is the number of completed runs.
func (w *Watcher) Runs() int {
	return int(w.runs.Load())
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && w.files[abs]
}

// Run blocks until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	log := logger.LoggerFromContext(ctx, "watch")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debugw("change detected", logger.FieldFile, ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			start := time.Now()
			if err := w.run(ctx); err != nil {
				log.Errorw("re-run failed", logger.FieldError, err)
			} else {
				log.Infow("re-run complete", logger.FieldDurationMS, time.Since(start).Milliseconds())
			}
			w.runs.Add(1)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", logger.FieldError, err)
		}
	}
}
