//go:build linux

package file

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for f using fallocate.
func preallocate(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err == nil {
		return nil
	}

	// Some filesystems (e.g. NFS before v4.2) don't implement fallocate.
	if errors.Is(err, syscall.EOPNOTSUPP) || errors.Is(err, syscall.ENOSYS) {
		return fmt.Errorf("fallocate not supported: %w", ErrPreallocUnsupported)
	}

	return fmt.Errorf("fallocate failed: %w", err)
}
