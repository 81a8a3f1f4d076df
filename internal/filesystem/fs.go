package filesystem

import (
	"fmt"

	"github.com/spf13/afero"
)

// fsOpener implements FileOpener on top of an afero.Fs.
type fsOpener struct {
	fs afero.Fs
}

// NewFsOpener returns a FileOpener backed by fs.
func NewFsOpener(fs afero.Fs) FileOpener {
	return &fsOpener{fs: fs}
}

// NewMemOpener returns a FileOpener over a fresh in-memory filesystem along
// with the filesystem itself, so callers can seed files.
func NewMemOpener() (FileOpener, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewFsOpener(fs), fs
}

// OpenFile opens the named file with the given mode.
func (o *fsOpener) OpenFile(name string, mode Mode) (File, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	f, err := o.fs.OpenFile(name, mode.Flag(), mode.perm())
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}
