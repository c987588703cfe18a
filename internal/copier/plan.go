package copier

import (
	"fmt"

	"github.com/slok/pcp/internal/model"
)

// Plan splits a file of fileSize bytes into sliceCount contiguous, disjoint
// ranges whose union is exactly [0, fileSize). When fileSize is not evenly
// divisible, the remainder is spread one byte at a time over the leading
// slices, so no two slices differ in length by more than one byte.
//
// A zero byte file yields a single empty range so callers always have at
// least one slice to report completion for. When sliceCount is bigger than
// fileSize it is clamped so no slice ends up empty.
func Plan(fileSize int64, sliceCount int) ([]model.SliceRange, error) {
	if sliceCount <= 0 {
		return nil, fmt.Errorf("slice count must be 1 or greater, got %d: %w", sliceCount, model.ErrInvalidPlan)
	}
	if fileSize < 0 {
		return nil, fmt.Errorf("file size can't be negative, got %d: %w", fileSize, model.ErrInvalidPlan)
	}

	if fileSize == 0 {
		return []model.SliceRange{{Index: 0, Start: 0, End: 0}}, nil
	}

	if int64(sliceCount) > fileSize {
		sliceCount = int(fileSize)
	}

	base := fileSize / int64(sliceCount)
	remainder := fileSize % int64(sliceCount)

	ranges := make([]model.SliceRange, 0, sliceCount)
	var start int64
	for i := 0; i < sliceCount; i++ {
		length := base
		if int64(i) < remainder {
			length++
		}
		ranges = append(ranges, model.SliceRange{Index: i, Start: start, End: start + length})
		start += length
	}

	return ranges, nil
}

// SliceCountForSize returns how many slices of at most sliceSize bytes are
// needed to cover fileSize bytes.
func SliceCountForSize(fileSize, sliceSize int64) (int, error) {
	if sliceSize <= 0 {
		return 0, fmt.Errorf("slice size must be 1 or greater, got %d: %w", sliceSize, model.ErrInvalidPlan)
	}
	if fileSize < 0 {
		return 0, fmt.Errorf("file size can't be negative, got %d: %w", fileSize, model.ErrInvalidPlan)
	}

	if fileSize == 0 {
		return 1, nil
	}

	return int((fileSize + sliceSize - 1) / sliceSize), nil
}
