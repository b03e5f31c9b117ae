package install

import (
	"os"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

// Clean implements §4.9: remove the user-home cache directory tree if it
// exists, reporting whether there was anything to remove.
func (i *Installer) Clean() (removed bool, err error) {
	root := i.store.Root()
	if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
		return false, nil
	}
	if err := os.RemoveAll(root); err != nil {
		return false, &pacmerr.FilesystemError{Op: "remove cache directory", Err: err}
	}
	return true, nil
}
