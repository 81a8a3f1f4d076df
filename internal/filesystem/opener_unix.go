//go:build !windows

package filesystem

import "github.com/spf13/afero"

// NewFileOpener returns a FileOpener appropriate for the current OS.
// On Unix, file sharing needs no special flags, so the OS filesystem is used
// directly.
func NewFileOpener() FileOpener {
	return NewFsOpener(afero.NewOsFs())
}
