//go:build windows

package filesystem

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// windowsOpener implements FileOpener with Windows-specific share modes.
type windowsOpener struct{}

// NewFileOpener returns a FileOpener that uses Windows share modes
// so files that other processes have open can still be opened.
func NewFileOpener() FileOpener {
	return &windowsOpener{}
}

// OpenFile opens the named file with FILE_SHARE_READ | FILE_SHARE_WRITE | FILE_SHARE_DELETE.
// Supports extended-length paths (>260 chars) by automatically adding \\?\ prefix.
func (o *windowsOpener) OpenFile(name string, mode Mode) (File, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	pathPtr, err := windows.UTF16PtrFromString(extendedPath(name))
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	handle, err := windows.CreateFile(
		pathPtr,
		access(mode),
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		disposition(mode),
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, &os.PathError{Op: "open", Path: name, Err: err})
	}

	return os.NewFile(uintptr(handle), name), nil
}

// extendedPath converts paths over MAX_PATH to the \\?\ form.
// See: https://docs.microsoft.com/en-us/windows/win32/fileio/maximum-file-path-limitation
func extendedPath(name string) string {
	if len(name) <= 259 || strings.HasPrefix(name, `\\?\`) {
		return name
	}
	if strings.HasPrefix(name, `\\`) {
		// UNC path: \\server\share -> \\?\UNC\server\share
		return `\\?\UNC\` + name[2:]
	}
	return `\\?\` + name
}

func access(mode Mode) uint32 {
	var a uint32
	if mode.Read {
		a |= windows.GENERIC_READ
	}
	if mode.Write {
		a |= windows.GENERIC_WRITE
	}
	return a
}

func disposition(mode Mode) uint32 {
	switch {
	case mode.Create && mode.Truncate:
		return windows.CREATE_ALWAYS
	case mode.Create:
		return windows.OPEN_ALWAYS
	case mode.Truncate:
		return windows.TRUNCATE_EXISTING
	default:
		return windows.OPEN_EXISTING
	}
}
