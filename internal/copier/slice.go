package copier

import (
	"errors"
	"fmt"
	"io"

	"github.com/slok/pcp/internal/model"
)

// DefaultChunkSize is the read/write block size used inside a slice.
// Chunks exist for progress granularity, they are independent of slice size.
const DefaultChunkSize = 1 << 20 // 1 MiB.

// progressFunc receives the cumulative bytes copied for one slice after
// every chunk write. Implementations must not block.
type progressFunc func(index int, bytesCopied int64)

// copySlice copies one byte range from src to dst using positional reads and
// writes. It only ever touches [rng.Start, rng.End) on the destination, which
// is what makes concurrent slices over one file safe without locking.
//
// The copy stops on the first error, there are no internal retries. The
// returned result carries the absolute offset reached so a caller can tell
// how far the slice got.
func copySlice(src io.ReaderAt, dst io.WriterAt, rng model.SliceRange, chunkSize int64, progress progressFunc) model.SliceResult {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf := make([]byte, chunkSize)
	var copied int64

	for copied < rng.Length() {
		n := chunkSize
		if remaining := rng.Length() - copied; remaining < n {
			n = remaining
		}
		offset := rng.Start + copied

		nr, rerr := src.ReadAt(buf[:n], offset)
		if nr > 0 {
			nw, werr := dst.WriteAt(buf[:nr], offset)
			copied += int64(nw)
			if progress != nil && nw > 0 {
				progress(rng.Index, copied)
			}
			if werr != nil {
				return failedSlice(rng, copied, fmt.Errorf("write at offset %d: %v: %w", offset+int64(nw), werr, model.ErrIOFailure))
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if copied < rng.Length() {
					missing := rng.Length() - copied
					return failedSlice(rng, copied, fmt.Errorf("source ended %d bytes early at offset %d: %w", missing, rng.Start+copied, model.ErrShortRead))
				}
				break
			}
			return failedSlice(rng, copied, fmt.Errorf("read at offset %d: %v: %w", offset+int64(nr), rerr, model.ErrIOFailure))
		}
	}

	return model.SliceResult{
		Index:       rng.Index,
		BytesCopied: copied,
		Status:      model.SliceStatusSuccess,
	}
}

func failedSlice(rng model.SliceRange, copied int64, err error) model.SliceResult {
	return model.SliceResult{
		Index:       rng.Index,
		BytesCopied: copied,
		Status:      model.SliceStatusFailed,
		FailOffset:  rng.Start + copied,
		Err:         err,
	}
}

func skippedSlice(rng model.SliceRange) model.SliceResult {
	return model.SliceResult{
		Index:  rng.Index,
		Status: model.SliceStatusSkipped,
	}
}
