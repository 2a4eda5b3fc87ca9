//go:build !windows

package fsutil

import (
	"os"

	"github.com/google/renameio"
)

// WriteFileAtomic replaces filename with data in one step: readers see
// either the previous content or the new one, never a partial write.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
