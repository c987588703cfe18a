package historyshow

import (
	"context"
	"fmt"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage"
)

// ServiceConfig is the configuration for the history show service.
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

// Service shows the detail of one recorded copy run.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history show service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the show request parameters.
type Request struct {
	RunID string
}

// Run returns one recorded copy run by ID.
func (s *Service) Run(ctx context.Context, req Request) (*model.CopyRun, error) {
	if req.RunID == "" {
		return nil, fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	run, err := s.repo.GetRun(ctx, req.RunID)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}
