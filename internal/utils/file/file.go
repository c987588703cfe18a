// Package file provides file utility functions including destination
// preallocation for concurrent offset writers.
package file

import (
	"errors"
	"fmt"
	"os"
)

// ErrPreallocUnsupported is returned when the filesystem or kernel does not
// support fallocate, allowing the caller to fall back to truncation.
var ErrPreallocUnsupported = errors.New("preallocation not supported")

// Preallocate sizes f to exactly size bytes before any data is written to it.
// On Linux it reserves the blocks with fallocate so concurrent offset writers
// never race against file growth or hit ENOSPC mid-copy; elsewhere (or when
// the filesystem rejects fallocate) it falls back to a plain truncate.
func Preallocate(f *os.File, size int64) error {
	if size < 0 {
		return fmt.Errorf("size can't be negative, got %d", size)
	}

	if size == 0 {
		return f.Truncate(0)
	}

	if err := preallocate(f, size); err != nil {
		if errors.Is(err, ErrPreallocUnsupported) {
			return f.Truncate(size)
		}
		return err
	}

	return nil
}
