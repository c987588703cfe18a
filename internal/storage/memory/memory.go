package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository, used
// mainly on tests.
type Repository struct {
	runs   map[string]model.CopyRun
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:   map[string]model.CopyRun{},
		logger: cfg.Logger,
	}, nil
}

// CreateRun stores a finished copy run.
func (r *Repository) CreateRun(ctx context.Context, run model.CopyRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run %q: %w", run.ID, model.ErrAlreadyExists)
	}
	r.runs[run.ID] = run

	r.logger.Debugf("Stored run %s", run.ID)
	return nil
}

// GetRun returns a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.CopyRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, model.ErrNotFound)
	}
	return &run, nil
}

// ListRuns returns runs sorted by start time, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.CopyRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.CopyRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
