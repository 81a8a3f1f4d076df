// Package handle opens a single file and hands its ownership to exactly one
// caller.
package handle

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jmurray2011/hopen/internal/filesystem"
	"go.uber.org/multierr"
)

// Opener owns one file handle from the moment it is opened until Take
// transfers it or Close releases it.
type Opener struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	file    filesystem.File
	err     error
	cleanup runtime.Cleanup
}

// New attempts to open path and always returns an Opener. If the open fails,
// "unable to read file <path>" is written to the diagnostics writer and the
// failure is available from Err and Take.
func New(path string, opts ...Option) *Opener {
	cfg := newConfig(opts)
	o := &Opener{
		path:   path,
		logger: cfg.logger.With("path", path),
	}

	f, err := cfg.opener.OpenFile(path, cfg.mode)
	if err != nil {
		o.state = StateFailed
		o.err = &OpenError{Path: path, Mode: cfg.mode, Err: err}
		fmt.Fprintln(cfg.diagnostics, diagnostic(path))
		o.logger.Warn("open failed", "mode", cfg.mode.String(), "error", err)
		return o
	}

	o.state = StateHeld
	o.file = f
	// Close the handle if the Opener is dropped while still holding it.
	o.cleanup = runtime.AddCleanup(o, closeAbandoned, f)
	o.logger.Debug("opened", "mode", cfg.mode.String())
	return o
}

// Open is New with the failure returned as an error. On failure the Opener
// is nil and the error is an *OpenError.
func Open(path string, opts ...Option) (*Opener, error) {
	o := New(path, opts...)
	if err := o.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// Use opens path, passes the handle to fn and closes it afterwards,
// whatever fn returns.
func Use(path string, fn func(filesystem.File) error, opts ...Option) (err error) {
	o, err := Open(path, opts...)
	if err != nil {
		return err
	}
	f, err := o.Take()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return fn(f)
}

func closeAbandoned(f filesystem.File) {
	f.Close()
}

// Path returns the path given to New.
func (o *Opener) Path() string {
	return o.path
}

// Err returns the *OpenError if the open failed, nil otherwise.
func (o *Opener) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// State returns the current lifecycle state.
func (o *Opener) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Take transfers ownership of the handle to the caller, who becomes
// responsible for closing it. Only the first call succeeds; later calls
// return ErrTaken.
func (o *Opener) Take() (filesystem.File, error) {
	if o == nil {
		return nil, ErrUnopened
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateHeld:
		o.cleanup.Stop()
		f := o.file
		o.file = nil
		o.state = StateTaken
		o.logger.Debug("handle taken")
		return f, nil
	case StateFailed:
		return nil, o.err
	case StateTaken:
		return nil, ErrTaken
	case StateClosed:
		return nil, ErrClosed
	default:
		return nil, ErrUnopened
	}
}

// Close releases the handle if it was never taken. It is safe to call more
// than once and is a no-op after Take.
func (o *Opener) Close() error {
	if o == nil {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateHeld {
		return nil
	}
	o.cleanup.Stop()
	f := o.file
	o.file = nil
	o.state = StateClosed
	o.logger.Debug("handle released")

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", o.path, err)
	}
	return nil
}
