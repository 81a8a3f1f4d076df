package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher waits for a path to appear on disk.
type Watcher interface {
	// Wait blocks until the path exists or the context is cancelled.
	// Returns nil immediately if the path already exists.
	Wait(ctx context.Context) error
}

// Config holds watcher configuration.
type Config struct {
	// Path is the file to wait for.
	Path string
	// PollInterval is how often to stat the path. Polling runs alongside
	// fsnotify and replaces it when the parent directory cannot be watched.
	PollInterval time.Duration
}

// watcher implements Watcher with fsnotify on the parent directory,
// backed by polling.
type watcher struct {
	config Config
}

// NewWatcher creates a new Watcher.
func NewWatcher(config Config) Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	return &watcher{config: config}
}

// WaitFor waits for path with the given poll interval.
func WaitFor(ctx context.Context, path string, pollInterval time.Duration) error {
	return NewWatcher(Config{Path: path, PollInterval: pollInterval}).Wait(ctx)
}

// Wait blocks until the path exists or the context is cancelled.
func (w *watcher) Wait(ctx context.Context) error {
	path := filepath.Clean(w.config.Path)

	// Subscribe before the first stat so a file created in between is not missed.
	var events <-chan fsnotify.Event
	var errs <-chan error
	if fw, err := fsnotify.NewWatcher(); err == nil {
		defer fw.Close()
		if err := fw.Add(filepath.Dir(path)); err == nil {
			events, errs = fw.Events, fw.Errors
		}
	}

	if ok, err := exists(path); ok || err != nil {
		return err
	}

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", path, ctx.Err())
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(evt.Name) != path || !evt.Has(fsnotify.Create|fsnotify.Rename|fsnotify.Write) {
				continue
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
			// Overflow or similar; the ticker still covers us.
			continue
		case <-ticker.C:
		}

		if ok, err := exists(path); ok || err != nil {
			return err
		}
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("accessing %s: %w", path, err)
	}
}
