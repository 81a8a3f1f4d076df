package filesystem

import (
	"io"
	"os"
)

// FileOpener opens files with an explicit Mode.
// On Windows, this also means FILE_SHARE_READ | FILE_SHARE_WRITE | FILE_SHARE_DELETE
// so files that other processes have open can still be used.
type FileOpener interface {
	// OpenFile opens the named file with the given mode.
	// The returned File must be closed by whoever ends up owning it.
	OpenFile(name string, mode Mode) (File, error)
}

// File is an open handle to a path on persistent storage.
// Both *os.File and afero.File satisfy it.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Name() string
	Stat() (os.FileInfo, error)
}
