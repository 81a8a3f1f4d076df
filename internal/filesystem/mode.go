package filesystem

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidMode is returned for mode strings or flag combinations that
// cannot be opened.
var ErrInvalidMode = errors.New("invalid open mode")

// Mode describes how a file is opened.
type Mode struct {
	Read     bool
	Write    bool
	Create   bool // create the file if it does not exist
	Truncate bool // discard existing content on open
	Perm     os.FileMode
}

// DefaultMode opens for binary read/write, creates the file if absent and
// never truncates existing content.
var DefaultMode = Mode{
	Read:   true,
	Write:  true,
	Create: true,
	Perm:   0644,
}

// ParseMode parses "r", "w" or "rw" into a Mode. Create and Truncate are
// left unset; callers toggle them separately.
func ParseMode(s string) (Mode, error) {
	m := Mode{Perm: DefaultMode.Perm}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r":
		m.Read = true
	case "w":
		m.Write = true
	case "rw", "wr":
		m.Read = true
		m.Write = true
	default:
		return Mode{}, fmt.Errorf("%w: %q (use r, w or rw)", ErrInvalidMode, s)
	}
	return m, nil
}

// Validate reports whether the mode can be passed to an open call.
func (m Mode) Validate() error {
	if !m.Read && !m.Write {
		return fmt.Errorf("%w: neither read nor write requested", ErrInvalidMode)
	}
	if !m.Write && (m.Create || m.Truncate) {
		return fmt.Errorf("%w: create and truncate require write access", ErrInvalidMode)
	}
	return nil
}

// Flag returns the os.O_* flags for the mode.
func (m Mode) Flag() int {
	var flag int
	switch {
	case m.Read && m.Write:
		flag = os.O_RDWR
	case m.Write:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if m.Create {
		flag |= os.O_CREATE
	}
	if m.Truncate {
		flag |= os.O_TRUNC
	}
	return flag
}

func (m Mode) perm() os.FileMode {
	if m.Perm == 0 {
		return DefaultMode.Perm
	}
	return m.Perm
}

// String renders the mode the way ParseMode accepts it, plus modifiers.
func (m Mode) String() string {
	var b strings.Builder
	if m.Read {
		b.WriteString("r")
	}
	if m.Write {
		b.WriteString("w")
	}
	if m.Create {
		b.WriteString("+create")
	}
	if m.Truncate {
		b.WriteString("+trunc")
	}
	return b.String()
}
