package copyfile

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/pcp/internal/copier"
	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage"
)

// Engine is the copy engine the service drives.
type Engine interface {
	Run(ctx context.Context, req copier.Request) (*model.CopyRunResult, error)
}

// ServiceConfig is the configuration for the copy service.
type ServiceConfig struct {
	Engine Engine
	// Repository records finished runs. Optional, nil disables history.
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.CopyFile"})
	return nil
}

// Service handles single file copy operations.
type Service struct {
	engine Engine
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new copy service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine: cfg.Engine,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for a copy operation.
type Request struct {
	Source      string
	Destination string
	SliceCount  int
	SliceSize   int64
	Concurrency int
	// Overwrite allows replacing an existing destination file.
	Overwrite bool
	// NoHistory disables recording this run.
	NoHistory bool
	// Progress is an optional observer of the run's progress.
	Progress copier.Notifier
}

// Run executes a copy operation: it resolves the destination path, runs the
// copy engine and records the finished run in history.
//
// When one or more slices fail the returned error is non-nil but the run is
// returned too, so the caller can inspect which slices failed and decide what
// to do with the partially written destination.
func (s *Service) Run(ctx context.Context, req Request) (*model.CopyRun, error) {
	srcInfo, err := os.Stat(req.Source)
	if err != nil {
		return nil, fmt.Errorf("could not stat source %q: %v: %w", req.Source, err, model.ErrSourceUnreadable)
	}
	if !srcInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("source %q is not a regular file: %w", req.Source, model.ErrSourceUnreadable)
	}

	dest, err := s.resolveDestination(req.Source, req.Destination, srcInfo, req.Overwrite)
	if err != nil {
		return nil, err
	}

	run := model.CopyRun{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Source:      req.Source,
		Destination: dest,
		FileSize:    srcInfo.Size(),
		StartedAt:   time.Now().UTC(),
	}

	s.logger.Infof("Copying %d bytes from %q to %q", run.FileSize, run.Source, run.Destination)

	result, err := s.engine.Run(ctx, copier.Request{
		Source:      req.Source,
		Destination: dest,
		SliceCount:  req.SliceCount,
		SliceSize:   req.SliceSize,
		Concurrency: req.Concurrency,
		Progress:    req.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("could not copy: %w", err)
	}

	run.FinishedAt = time.Now().UTC()
	run.Result = *result
	run.SliceCount = len(result.Slices)
	run.Concurrency = req.Concurrency
	if run.Concurrency == 0 {
		run.Concurrency = run.SliceCount
	}

	s.recordRun(ctx, run, req.NoHistory)

	if result.Outcome != model.OutcomeSuccess {
		failed := len(result.FailedSlices())
		return &run, fmt.Errorf("%d of %d slices did not succeed: %w", failed, run.SliceCount, model.ErrIOFailure)
	}

	return &run, nil
}

// resolveDestination applies the destination policy: directory targets get
// the source base name appended, and existing files are only replaced when
// overwrite was requested.
func (s *Service) resolveDestination(source, dest string, srcInfo os.FileInfo, overwrite bool) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(source))
	}

	info, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dest, nil
		}
		return "", fmt.Errorf("could not stat destination %q: %v: %w", dest, err, model.ErrDestUnwritable)
	}

	if os.SameFile(srcInfo, info) {
		return "", fmt.Errorf("source and destination %q are the same file: %w", dest, model.ErrNotValid)
	}
	if !overwrite {
		return "", fmt.Errorf("destination %q: %w", dest, model.ErrAlreadyExists)
	}

	return dest, nil
}

// recordRun stores the run in history. Recording is best effort, a history
// failure never fails a finished copy.
func (s *Service) recordRun(ctx context.Context, run model.CopyRun, noHistory bool) {
	if s.repo == nil || noHistory {
		return
	}

	if err := s.repo.CreateRun(ctx, run); err != nil {
		s.logger.Warningf("Could not record run %s in history: %v", run.ID, err)
		return
	}
	s.logger.Debugf("Recorded run %s in history", run.ID)
}
