package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage/sqlite"
)

func newTestRepository(t *testing.T) *sqlite.Repository {
	t.Helper()

	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "pcp-test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func successRun(id string, startedAt time.Time) model.CopyRun {
	return model.CopyRun{
		ID:          id,
		Source:      "/data/src.bin",
		Destination: "/data/dst.bin",
		FileSize:    4096,
		SliceCount:  4,
		Concurrency: 4,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(3 * time.Second),
		Result: model.CopyRunResult{
			TotalBytesCopied: 4096,
			Outcome:          model.OutcomeSuccess,
		},
	}
}

func TestRepositoryCreateAndGetRun(t *testing.T) {
	t.Run("Successful run should round trip", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := newTestRepository(t)

		run := successRun("run-1", time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC))
		require.NoError(repo.CreateRun(context.Background(), run))

		got, err := repo.GetRun(context.Background(), "run-1")
		require.NoError(err)
		assert.Equal(run, *got)
	})

	t.Run("Failed run should keep its failed and skipped slices", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := newTestRepository(t)

		run := successRun("run-1", time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC))
		run.Result.Outcome = model.OutcomeFailure
		run.Result.TotalBytesCopied = 1200
		run.Result.Slices = []model.SliceResult{
			{Index: 0, BytesCopied: 1024, Status: model.SliceStatusSuccess},
			{Index: 1, BytesCopied: 176, Status: model.SliceStatusFailed, FailOffset: 1200, Err: errors.New("read failed: input/output error")},
			{Index: 2, Status: model.SliceStatusSkipped},
			{Index: 3, Status: model.SliceStatusSkipped},
		}
		require.NoError(repo.CreateRun(context.Background(), run))

		got, err := repo.GetRun(context.Background(), "run-1")
		require.NoError(err)

		// Only the slices that did not succeed are persisted.
		require.Len(got.Result.Slices, 3)
		assert.Equal(model.SliceResult{
			Index:       1,
			BytesCopied: 176,
			Status:      model.SliceStatusFailed,
			FailOffset:  1200,
			Err:         errors.New("read failed: input/output error"),
		}, got.Result.Slices[0])
		assert.Equal(model.SliceStatusSkipped, got.Result.Slices[1].Status)
		assert.Equal(model.SliceStatusSkipped, got.Result.Slices[2].Status)
		assert.Equal(model.OutcomeFailure, got.Result.Outcome)
	})

	t.Run("Creating the same run twice should fail", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		repo := newTestRepository(t)

		run := successRun("run-1", time.Now().UTC().Truncate(time.Second))
		require.NoError(repo.CreateRun(context.Background(), run))

		err := repo.CreateRun(context.Background(), run)
		assert.ErrorIs(err, model.ErrAlreadyExists)
	})

	t.Run("Run without ID should fail", func(t *testing.T) {
		assert := assert.New(t)

		repo := newTestRepository(t)

		err := repo.CreateRun(context.Background(), model.CopyRun{})
		assert.ErrorIs(err, model.ErrNotValid)
	})

	t.Run("Missing run should fail with not found", func(t *testing.T) {
		assert := assert.New(t)

		repo := newTestRepository(t)

		_, err := repo.GetRun(context.Background(), "run-missing")
		assert.ErrorIs(err, model.ErrNotFound)
	})
}

func TestRepositoryListRuns(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		runs   []model.CopyRun
		limit  int
		expIDs []string
	}{
		"No runs should return an empty list": {
			expIDs: []string{},
		},

		"Runs should be sorted newest first": {
			runs: []model.CopyRun{
				successRun("run-1", t0),
				successRun("run-3", t0.Add(2*time.Minute)),
				successRun("run-2", t0.Add(time.Minute)),
			},
			expIDs: []string{"run-3", "run-2", "run-1"},
		},

		"Limit should cap the results": {
			runs: []model.CopyRun{
				successRun("run-1", t0),
				successRun("run-2", t0.Add(time.Minute)),
				successRun("run-3", t0.Add(2*time.Minute)),
			},
			limit:  2,
			expIDs: []string{"run-3", "run-2"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := newTestRepository(t)
			for _, run := range test.runs {
				require.NoError(repo.CreateRun(context.Background(), run))
			}

			runs, err := repo.ListRuns(context.Background(), test.limit)
			require.NoError(err)

			ids := []string{}
			for _, run := range runs {
				ids = append(ids, run.ID)
			}
			assert.Equal(test.expIDs, ids)
		})
	}
}
