package model

import (
	"time"
)

// SliceRange is a contiguous byte range of the source file assigned to one worker.
// Start is inclusive, End is exclusive.
type SliceRange struct {
	Index int
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r SliceRange) Length() int64 { return r.End - r.Start }

// SliceStatus represents the terminal state of a slice copy.
type SliceStatus string

const (
	// SliceStatusSuccess means the slice was copied completely.
	SliceStatusSuccess SliceStatus = "success"
	// SliceStatusFailed means the slice copy stopped on an I/O error.
	SliceStatusFailed SliceStatus = "failed"
	// SliceStatusSkipped means the slice was never started because an earlier
	// slice already failed.
	SliceStatusSkipped SliceStatus = "skipped"
)

// SliceResult is the terminal result of copying one slice. It is produced
// exactly once per slice and is immutable once recorded.
type SliceResult struct {
	Index       int
	BytesCopied int64
	Status      SliceStatus
	// FailOffset is the absolute byte offset reached when the slice failed.
	// Only meaningful when Status is failed.
	FailOffset int64
	// Err carries the failure cause, nil unless Status is failed.
	Err error
}

// Outcome represents the overall result of a copy run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// CopyRunResult aggregates the terminal results of every slice of a run.
// It is assembled only once all slices are terminal.
type CopyRunResult struct {
	TotalBytesCopied int64
	// Slices holds one result per planned slice, ordered by slice index.
	Slices  []SliceResult
	Outcome Outcome
}

// FailedSlices returns the slices that did not succeed, ordered by index.
func (r CopyRunResult) FailedSlices() []SliceResult {
	var failed []SliceResult
	for _, s := range r.Slices {
		if s.Status != SliceStatusSuccess {
			failed = append(failed, s)
		}
	}
	return failed
}

// CopyRun represents a finished copy run, as recorded in history.
type CopyRun struct {
	ID          string
	Source      string
	Destination string
	FileSize    int64
	SliceCount  int
	Concurrency int
	StartedAt   time.Time
	FinishedAt  time.Time
	Result      CopyRunResult
}

// Duration returns how long the run took.
func (r CopyRun) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
