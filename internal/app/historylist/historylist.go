package historylist

import (
	"context"
	"fmt"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage"
)

// ServiceConfig is the configuration for the history list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists recorded copy runs.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Limit caps how many runs are returned, newest first. 0 means no limit.
	Limit int
}

// Run lists recorded copy runs, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CopyRun, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	runs, err := s.repo.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	s.logger.Debugf("Found %d runs", len(runs))
	return runs, nil
}
