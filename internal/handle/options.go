package handle

import (
	"io"
	"log/slog"
	"os"

	"github.com/jmurray2011/hopen/internal/filesystem"
)

type config struct {
	mode        filesystem.Mode
	opener      filesystem.FileOpener
	diagnostics io.Writer
	logger      *slog.Logger
}

func newConfig(opts []Option) config {
	c := config{
		mode:        filesystem.DefaultMode,
		diagnostics: os.Stdout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.opener == nil {
		c.opener = filesystem.NewFileOpener()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Option configures an Opener.
type Option func(*config)

// WithMode sets the open mode. Defaults to filesystem.DefaultMode.
func WithMode(mode filesystem.Mode) Option {
	return func(c *config) { c.mode = mode }
}

// WithFileOpener replaces the OS opener, e.g. with an in-memory one.
func WithFileOpener(o filesystem.FileOpener) Option {
	return func(c *config) { c.opener = o }
}

// WithDiagnostics sets where the "unable to read file" line goes.
// A nil writer discards it. Defaults to os.Stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}
		c.diagnostics = w
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}
