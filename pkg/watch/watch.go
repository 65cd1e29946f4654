// Package watch re-formats a file of JEXL expressions whenever it changes.
//
// The file holds one expression per line. Blank lines and lines starting
// with # are passed through unchanged so that expression files can carry
// comments.
//
// # Example
//
//	w, err := watch.New(&watch.Config{Path: "rules.jexl"}, jexltostring.New(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//	err = w.Watch(ctx, func(r watch.Result) {
//	    fmt.Println(r.Text())
//	})
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Formatter formats a single expression.
type Formatter interface {
	Format(src string) (string, error)
}

// Config contains configuration for the watcher.
type Config struct {
	// Path is the expression file to watch.
	Path string

	// DebounceInterval is the quiet period after the last change before the
	// file is formatted again (default: 100ms).
	DebounceInterval time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
	}
}

// Result is the outcome of formatting the watched file once.
type Result struct {
	// Path is the watched file.
	Path string
	// Lines holds one entry per input line. Lines that failed to format
	// keep their original text.
	Lines []string
	// Err joins the per-line errors, or reports why the file could not be read.
	Err error
}

// Text returns the formatted file contents.
func (r Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Watcher watches an expression file and formats it on every change.
type Watcher struct {
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	config    *Config
	path      string
	formatter Formatter
	debounce  *Debouncer

	// State
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher that formats config.Path with f.
func New(config *Config, f Formatter, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, errors.New("watch: no path configured")
	}
	if f == nil {
		return nil, errors.New("watch: no formatter configured")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", config.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:   watcher,
		logger:    logger,
		config:    config,
		path:      path,
		formatter: f,
		debounce:  NewDebouncer(config.DebounceInterval),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Watch formats the file once, then again after each burst of changes,
// passing every Result to onResult. It blocks until the context is
// cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, onResult func(Result)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		// No debounced result may reach onResult after Watch returns.
		w.debounce.Stop()

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	// Editors often replace a file rather than write to it, which would drop
	// a watch on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	w.logger.Info("File watcher started",
		"path", w.path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	onResult(w.run())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("File event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.Trigger(func() {
				onResult(w.run())
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}

			w.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases its resources. It is safe to call
// more than once and whether or not Watch is running.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.mu.RLock()
		running := w.running
		w.mu.RUnlock()
		if running {
			<-w.doneCh
		}

		w.debounce.Stop()

		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

// run reads and formats the watched file.
func (w *Watcher) run() Result {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Error("Reading expression file failed", "path", w.path, "error", err)
		return Result{Path: w.path, Err: fmt.Errorf("failed to read %q: %w", w.path, err)}
	}

	lines, err := FormatSource(w.formatter, string(data))
	if err != nil {
		w.logger.Error("Formatting expression file failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("Formatted expression file", "path", w.path, "lines", len(lines))
	}
	return Result{Path: w.path, Lines: lines, Err: err}
}

// shouldProcessEvent reports whether event changed the watched file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// FormatSource formats each line of src with f. Blank lines and # comments
// are kept as they are, as is any line that fails to format; the errors of
// failing lines are joined and name the 1-based line number.
func FormatSource(f Formatter, src string) ([]string, error) {
	lines := strings.Split(src, "\n")
	var errs []error
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		s, err := f.Format(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		lines[i] = s
	}
	return lines, errors.Join(errs...)
}

// Debouncer implements event debouncing to prevent reformat storms.
// It collects rapid events and triggers the callback only after a quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
	running  sync.WaitGroup
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
	}
}

// Trigger triggers the debouncer with a new event.
// The callback will be called after the debounce interval if no new events occur.
// Triggers after Stop are ignored.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		cb := d.callback
		d.running.Add(1)
		d.mu.Unlock()
		defer d.running.Done()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback and waits for a running one to return,
// so no callback runs once Stop has returned. It is safe to call more than
// once, but not from inside a callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
	d.mu.Unlock()

	d.running.Wait()
}
