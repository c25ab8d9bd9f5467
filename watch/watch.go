// Package watch monitors source directories and triggers debounced rebuilds.
// It watches directories recursively (fsnotify is non-recursive by itself)
// and adds newly created directories as they appear.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sitesmith/sitesmith/errs"
	"github.com/sitesmith/sitesmith/internal/util/sets"
)

// Watcher triggers a callback after file changes settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	watched  sets.Set[string]

	changed chan struct{}
}

// New creates a watcher over the given directories. ignore lists path
// prefixes (relative or absolute, matched after cleaning) that never trigger
// rebuilds; the build output directory must be in it or every build would
// trigger the next.
func New(dirs []string, debounce time.Duration, ignore []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryConfig, "creating file watcher")
	}

	w := &Watcher{
		watcher:  fsw,
		debounce: debounce,
		watched:  sets.New[string](),
		changed:  make(chan struct{}, 1),
	}
	for _, p := range ignore {
		w.ignore = append(w.ignore, filepath.Clean(p))
	}

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.Wrap(err, errs.CategoryConfig, "walking watch directory "+root)
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return fs.SkipDir
		}
		// Hidden directories (.git and friends) are never interesting.
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if w.watched.Add(path) {
			if err := w.watcher.Add(path); err != nil {
				return errs.Wrap(err, errs.CategoryConfig, "watching directory "+path)
			}
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	clean := filepath.Clean(path)
	for _, ig := range w.ignore {
		if clean == ig || strings.HasPrefix(clean, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run blocks, invoking rebuild after each debounced burst of changes, until
// the context is canceled. Rebuild errors are the callback's to report; Run
// keeps watching either way.
func (w *Watcher) Run(ctx context.Context, rebuild func(ctx context.Context) error) error {
	defer w.watcher.Close()

	go w.eventLoop(ctx)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-w.changed:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := rebuild(ctx); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		}
	}
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			// New directories need their own watch to keep recursion alive.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(event.Name); err != nil {
					slog.Debug("cannot watch new path", "path", event.Name, "error", err)
				}
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				slog.Debug("file change detected", "path", event.Name, "op", event.Op.String())
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.changed <- struct{}{}:
	default: // rebuild already pending
	}
}
