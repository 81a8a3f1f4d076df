package handle

import (
	"errors"
	"fmt"

	"github.com/jmurray2011/hopen/internal/filesystem"
)

var (
	// ErrTaken is returned by Take once the handle has been transferred.
	ErrTaken = errors.New("handle already taken")
	// ErrClosed is returned by Take after the opener released the handle.
	ErrClosed = errors.New("handle closed")
	// ErrUnopened is returned when no open was attempted.
	ErrUnopened = errors.New("handle not opened")
)

// OpenError records a failed open of Path.
type OpenError struct {
	Path string
	Mode filesystem.Mode
	Err  error
}

// Message is the diagnostic line written when the open fails.
func (e *OpenError) Message() string {
	return diagnostic(e.Path)
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message(), e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

func diagnostic(path string) string {
	return "unable to read file " + path
}
