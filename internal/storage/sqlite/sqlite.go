package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite history repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository that records
// finished copy runs.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateRun stores a finished copy run and the slices that did not succeed.
func (r *Repository) CreateRun(ctx context.Context, run model.CopyRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO copy_runs (
			id, source, destination,
			file_size, slice_count, concurrency,
			outcome, bytes_copied,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		run.ID,
		run.Source,
		run.Destination,
		run.FileSize,
		run.SliceCount,
		run.Concurrency,
		string(run.Result.Outcome),
		run.Result.TotalBytesCopied,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: copy_runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	sliceQuery := `
		INSERT INTO copy_slices (run_id, slice_index, bytes_copied, status, fail_offset, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, s := range run.Result.FailedSlices() {
		errMsg := ""
		if s.Err != nil {
			errMsg = s.Err.Error()
		}
		_, err := tx.ExecContext(ctx, sliceQuery, run.ID, s.Index, s.BytesCopied, string(s.Status), s.FailOffset, errMsg)
		if err != nil {
			return fmt.Errorf("could not insert slice %d: %w", s.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// GetRun returns a run by ID. The returned run's result only carries the
// slices that did not succeed, success of the rest is implied.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.CopyRun, error) {
	query := `
		SELECT id, source, destination, file_size, slice_count, concurrency,
		       outcome, bytes_copied, started_at, finished_at
		FROM copy_runs
		WHERE id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %q: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	slices, err := r.runSlices(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Result.Slices = slices

	return run, nil
}

// ListRuns returns runs sorted by start time, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.CopyRun, error) {
	query := `
		SELECT id, source, destination, file_size, slice_count, concurrency,
		       outcome, bytes_copied, started_at, finished_at
		FROM copy_runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.CopyRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate runs: %w", err)
	}

	return runs, nil
}

func (r *Repository) runSlices(ctx context.Context, runID string) ([]model.SliceResult, error) {
	query := `
		SELECT slice_index, bytes_copied, status, fail_offset, error
		FROM copy_slices
		WHERE run_id = ?
		ORDER BY slice_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not list run slices: %w", err)
	}
	defer rows.Close()

	var slices []model.SliceResult
	for rows.Next() {
		var s model.SliceResult
		var status, errMsg string
		if err := rows.Scan(&s.Index, &s.BytesCopied, &status, &s.FailOffset, &errMsg); err != nil {
			return nil, fmt.Errorf("could not scan slice: %w", err)
		}
		s.Status = model.SliceStatus(status)
		if errMsg != "" {
			s.Err = errors.New(errMsg)
		}
		slices = append(slices, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate slices: %w", err)
	}

	return slices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.CopyRun, error) {
	var run model.CopyRun
	var outcome string
	var startedAt, finishedAt int64

	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.Destination,
		&run.FileSize,
		&run.SliceCount,
		&run.Concurrency,
		&outcome,
		&run.Result.TotalBytesCopied,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Result.Outcome = model.Outcome(outcome)
	run.StartedAt = time.Unix(startedAt, 0).UTC()
	run.FinishedAt = time.Unix(finishedAt, 0).UTC()

	return &run, nil
}
