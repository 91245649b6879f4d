// Package watch regenerates output whenever a watched file changes.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle. Editors often write a file in several steps for a single save.
const DefaultDebounce = 50 * time.Millisecond

// Watcher calls a handler each time one file changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	handler  func() error
	debounce time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for change and handler-failure records.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path. The parent directory is watched rather
// than the file itself, so the watch survives editors that replace the file
// by renaming a new one over it.
func New(path string, handler func() error, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.NewValidationError("watched path cannot be empty").WithField("path")
	}
	if handler == nil {
		return nil, errors.NewValidationError("handler cannot be nil").WithField("handler")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("path", abs)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run processes file events until ctx is cancelled, then releases the
// underlying watcher. Handler errors are logged by severity and do not stop
// the loop.
// Run may only be called once.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() { _ = w.watcher.Close() }()

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer
	defer debounceTimer.Stop()

	w.logger.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "op", event.Op.String())
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if err := w.handler(); err != nil {
				w.logHandlerError(err)
				continue
			}
			w.logger.Info("regenerated")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err.Error())
		}
	}
}

// logHandlerError logs input mistakes as warnings so the user can fix the
// file and save again; anything else is logged as an error.
func (w *Watcher) logHandlerError(err error) {
	severity := errors.GetSeverity(err)
	args := []any{"error", err.Error(), "severity", severity.String()}
	if severity == errors.SeverityWarning {
		w.logger.Warn("regeneration skipped", args...)
		return
	}
	w.logger.Error("regeneration failed", args...)
}

// relevant reports whether event touches the watched file with a write or create.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
