package storage

import (
	"context"

	"github.com/slok/pcp/internal/model"
)

// Repository is the interface for copy run history persistence.
type Repository interface {
	CreateRun(ctx context.Context, run model.CopyRun) error
	GetRun(ctx context.Context, id string) (*model.CopyRun, error)
	// ListRuns returns runs sorted by start time, newest first. limit <= 0
	// means no limit.
	ListRuns(ctx context.Context, limit int) ([]model.CopyRun, error)
}
