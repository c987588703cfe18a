// Package copier implements the concurrent slice copy engine: a source file
// is split into disjoint byte ranges and every range is copied by its own
// worker, bounded by a concurrency limit, all writing into one preallocated
// destination file.
package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	utilfile "github.com/slok/pcp/internal/utils/file"
)

const (
	// DefaultSliceCount is the number of slices used when the caller doesn't
	// pick one.
	DefaultSliceCount = 5

	defaultProgressInterval = 200 * time.Millisecond
)

// Config is the configuration for the copy engine.
type Config struct {
	// ChunkSize is the read/write block size inside a slice. Defaults to 1 MiB.
	ChunkSize int64
	// ProgressInterval is how often the progress notifier is invoked.
	ProgressInterval time.Duration
	Logger           log.Logger
}

func (c *Config) defaults() error {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be 1 or greater: %w", model.ErrInvalidConfig)
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = defaultProgressInterval
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "copier.Copier"})
	return nil
}

// Copier copies single files by slicing them and copying the slices
// concurrently.
type Copier struct {
	chunkSize        int64
	progressInterval time.Duration
	logger           log.Logger
}

// New creates a new copy engine.
func New(cfg Config) (*Copier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Copier{
		chunkSize:        cfg.ChunkSize,
		progressInterval: cfg.ProgressInterval,
		logger:           cfg.Logger,
	}, nil
}

// Request contains the parameters of one copy run.
type Request struct {
	Source      string
	Destination string
	// SliceCount is the number of slices to split the copy into. 0 means
	// DefaultSliceCount. Mutually exclusive with SliceSize.
	SliceCount int
	// SliceSize is a target slice size in bytes, the slice count is derived
	// from it. 0 means unset.
	SliceSize int64
	// Concurrency is the maximum number of slices copied at once. 0 means as
	// many as there are slices.
	Concurrency int
	// Progress is an optional observer of the run's progress.
	Progress Notifier
}

func (r Request) validate() error {
	if r.Source == "" {
		return fmt.Errorf("source path is required: %w", model.ErrNotValid)
	}
	if r.Destination == "" {
		return fmt.Errorf("destination path is required: %w", model.ErrNotValid)
	}
	if r.SliceCount < 0 {
		return fmt.Errorf("slice count can't be negative: %w", model.ErrInvalidPlan)
	}
	if r.SliceSize < 0 {
		return fmt.Errorf("slice size can't be negative: %w", model.ErrInvalidPlan)
	}
	if r.SliceCount > 0 && r.SliceSize > 0 {
		return fmt.Errorf("slice count and slice size are mutually exclusive: %w", model.ErrInvalidConfig)
	}
	if r.Concurrency < 0 {
		return fmt.Errorf("concurrency can't be negative: %w", model.ErrInvalidConfig)
	}
	return nil
}

// Run executes one copy run. Validation, planning and destination
// preallocation failures return an error before any worker starts. Per slice
// I/O failures don't: they are captured in the returned result, where a
// single failed slice makes the overall outcome a failure.
//
// On a failed run the destination is left in place but is not guaranteed
// complete or correct, removing or retrying it is the caller's decision.
func (c *Copier) Run(ctx context.Context, req Request) (*model.CopyRunResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	src, err := os.Open(req.Source)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v: %w", req.Source, err, model.ErrSourceUnreadable)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat %q: %v: %w", req.Source, err, model.ErrSourceUnreadable)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file: %w", req.Source, model.ErrSourceUnreadable)
	}
	fileSize := info.Size()

	sliceCount := req.SliceCount
	if req.SliceSize > 0 {
		sliceCount, err = SliceCountForSize(fileSize, req.SliceSize)
		if err != nil {
			return nil, err
		}
	}
	if sliceCount == 0 {
		sliceCount = DefaultSliceCount
	}

	plan, err := Plan(fileSize, sliceCount)
	if err != nil {
		return nil, err
	}

	concurrency := req.Concurrency
	if concurrency == 0 {
		concurrency = len(plan)
	}

	dst, err := os.OpenFile(req.Destination, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not create %q: %v: %w", req.Destination, err, model.ErrDestUnwritable)
	}
	defer dst.Close()

	// Size the destination up front so every worker can write its own range
	// without the file growing underneath concurrent writers.
	if err := utilfile.Preallocate(dst, fileSize); err != nil {
		return nil, fmt.Errorf("could not preallocate %q to %d bytes: %v: %w", req.Destination, fileSize, err, model.ErrDestUnwritable)
	}

	c.logger.Debugf("Copying %d bytes in %d slices with %d workers", fileSize, len(plan), concurrency)

	tracker := newProgressTracker(fileSize, len(plan))
	stopReporting := c.startReporting(req.Progress, tracker, len(plan))
	results := c.copyRanges(ctx, src, dst, plan, concurrency, tracker)
	stopReporting()

	res := &model.CopyRunResult{
		Slices:  results,
		Outcome: model.OutcomeSuccess,
	}
	for _, s := range results {
		res.TotalBytesCopied += s.BytesCopied
		if s.Status != model.SliceStatusSuccess {
			res.Outcome = model.OutcomeFailure
		}
	}

	return res, nil
}

// copyRanges fans the plan out to a bounded worker pool and collects one
// terminal result per slice. Slices are dispatched FIFO by index. After the
// first failure (or a context cancellation) pending slices are not started
// anymore, but in-flight slices run to their own completion so every written
// destination region has a recorded reason.
func (c *Copier) copyRanges(ctx context.Context, src io.ReaderAt, dst io.WriterAt, plan []model.SliceRange, concurrency int, tracker *progressTracker) []model.SliceResult {
	workers := concurrency
	if workers > len(plan) {
		workers = len(plan)
	}

	jobs := make(chan model.SliceRange)
	results := make(chan model.SliceResult)

	stopCtx, stopPending := context.WithCancel(ctx)
	defer stopPending()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rng := range jobs {
				if stopCtx.Err() != nil {
					results <- skippedSlice(rng)
					continue
				}
				results <- copySlice(src, dst, rng, c.chunkSize, tracker.record)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rng := range plan {
			jobs <- rng
		}
	}()

	out := make([]model.SliceResult, len(plan))
	for i := 0; i < len(plan); i++ {
		res := <-results
		if res.Status == model.SliceStatusFailed {
			c.logger.Warningf("Slice %d failed at offset %d: %v", res.Index, res.FailOffset, res.Err)
			stopPending()
		}
		out[res.Index] = res
	}
	wg.Wait()

	return out
}

// startReporting drives the progress notifier from its own goroutine so
// rendering never sits on the copy path. The returned stop function emits a
// final update and Finish, and waits for the loop to end.
func (c *Copier) startReporting(notifier Notifier, tracker *progressTracker, slices int) (stop func()) {
	if notifier == nil {
		return func() {}
	}

	notifier.Start(tracker.totalBytes, slices)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(c.progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				notifier.Progress(tracker.copiedBytes(), tracker.totalBytes)
				notifier.Finish()
				return
			case <-ticker.C:
				notifier.Progress(tracker.copiedBytes(), tracker.totalBytes)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
