//go:build !linux

package file

import "os"

// preallocate is not implemented on this platform, callers fall back to
// truncation.
func preallocate(f *os.File, size int64) error {
	return ErrPreallocUnsupported
}
