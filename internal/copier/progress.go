package copier

import (
	"sync/atomic"
)

// Notifier receives progress updates for a copy run. It is driven by the
// engine's reporting loop, off the copy path, so implementations may render
// to a terminal without slowing workers down. Calls are never concurrent.
type Notifier interface {
	// Start is called once before any slice starts copying.
	Start(totalBytes int64, slices int)
	// Progress is called periodically with the aggregate bytes copied so far.
	// copiedBytes is monotonically non-decreasing across one run.
	Progress(copiedBytes, totalBytes int64)
	// Finish is called once, after every slice is terminal.
	Finish()
}

// progressTracker aggregates per-slice byte counts into an overall completion
// figure. Each worker owns exactly one index, so recording is a plain atomic
// store and never blocks. Readers sum over the counters on demand.
type progressTracker struct {
	totalBytes int64
	counts     []atomic.Int64
}

func newProgressTracker(totalBytes int64, slices int) *progressTracker {
	return &progressTracker{
		totalBytes: totalBytes,
		counts:     make([]atomic.Int64, slices),
	}
}

// record stores the cumulative bytes copied for one slice. Counts are
// cumulative per slice and written by a single worker, so a store keeps the
// per-index value monotonic.
func (t *progressTracker) record(index int, bytesCopied int64) {
	t.counts[index].Store(bytesCopied)
}

// copiedBytes returns the aggregate bytes copied across all slices.
func (t *progressTracker) copiedBytes() int64 {
	var sum int64
	for i := range t.counts {
		sum += t.counts[i].Load()
	}
	return sum
}

// overallFraction returns the overall completion fraction in [0, 1]. An empty
// file is complete by definition.
func (t *progressTracker) overallFraction() float64 {
	if t.totalBytes == 0 {
		return 1
	}
	return float64(t.copiedBytes()) / float64(t.totalBytes)
}
