// Package watch monitors container source files and reports changes
// after a debounce window. The CLI uses it to re-read and re-export a
// container whenever its backing file is rewritten.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tabkit/tabkit/pkg/diag"
	"github.com/tabkit/tabkit/pkg/errors"
)

// DefaultDebounce is the quiet window applied when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports file rewrites through callbacks. Register files with
// Watch, then drive the loop with Run.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	mu    sync.RWMutex
	files map[string]*fileState

	// OnChange runs after a watched file settles; an error return is
	// forwarded to OnError.
	OnChange func(path string) error

	// OnError receives watch failures. The path is empty for errors not
	// tied to one file.
	OnError func(path string, err error)
}

// fileState dedupes events that did not actually change the file.
type fileState struct {
	path         string
	lastModified time.Time
	size         int64
	processing   bool
}

// NewWatcher creates a watcher with the given debounce window; zero or
// negative selects DefaultDebounce.
func NewWatcher(debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "create file watcher")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = diag.Discard()
	}
	return &Watcher{
		watcher:  fsWatcher,
		debounce: debounce,
		log:      log,
		files:    make(map[string]*fileState),
	}, nil
}

// Watch registers a file. The parent directory is added to the notify
// set so atomic replace-by-rename is seen as well.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeBadPath, "resolve %s", path)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return errors.Wrapf(err, errors.CodeFileNotFound, "stat %s", path)
	}

	w.mu.Lock()
	w.files[absPath] = &fileState{
		path:         absPath,
		lastModified: stat.ModTime(),
		size:         stat.Size(),
	}
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return errors.Wrapf(err, errors.CodeFileNotFound, "watch directory of %s", path)
	}

	w.log.Debug("watching file", "path", absPath)
	return nil
}

// Run drives the event loop until the context is cancelled. Rapid event
// bursts per file collapse into one callback after the debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	timers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			state, isWatched := w.files[absPath]
			w.mu.RUnlock()
			if !isWatched {
				continue
			}

			timerMu.Lock()
			if timer, exists := timers[absPath]; exists {
				timer.Stop()
			}
			timers[absPath] = time.AfterFunc(w.debounce, func() {
				w.handleChange(absPath, state)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) handleChange(path string, state *fileState) {
	w.mu.Lock()
	if state.processing {
		w.mu.Unlock()
		return
	}
	state.processing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.processing = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}

	// Unchanged modtime and size means the event carried no new content.
	if stat.ModTime().Equal(state.lastModified) && stat.Size() == state.size {
		return
	}

	w.mu.Lock()
	state.lastModified = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	w.log.Debug("file changed", "path", path, "size", stat.Size())
	if w.OnChange != nil {
		if err := w.OnChange(path); err != nil && w.OnError != nil {
			w.OnError(path, err)
		}
	}
}

// Close stops the watcher and releases its notify handles.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
