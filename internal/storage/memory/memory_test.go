package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage/memory"
)

func testRun(id string, startedAt time.Time) model.CopyRun {
	return model.CopyRun{
		ID:          id,
		Source:      "/tmp/src.bin",
		Destination: "/tmp/dst.bin",
		FileSize:    1000,
		SliceCount:  5,
		Concurrency: 5,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(2 * time.Second),
		Result: model.CopyRunResult{
			TotalBytesCopied: 1000,
			Outcome:          model.OutcomeSuccess,
		},
	}
}

func TestRepositoryCreateRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	run := testRun("run-1", time.Now().UTC())
	require.NoError(repo.CreateRun(context.Background(), run))

	// Creating the same run twice should fail.
	err = repo.CreateRun(context.Background(), run)
	assert.ErrorIs(err, model.ErrAlreadyExists)
}

func TestRepositoryGetRun(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	run := testRun("run-1", time.Now().UTC())
	require.NoError(repo.CreateRun(context.Background(), run))

	got, err := repo.GetRun(context.Background(), "run-1")
	require.NoError(err)
	assert.Equal(run, *got)

	_, err = repo.GetRun(context.Background(), "run-missing")
	assert.ErrorIs(err, model.ErrNotFound)
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
				testRun("run-old", t0),
				testRun("run-new", t0.Add(time.Hour)),
				testRun("run-mid", t0.Add(time.Minute)),
			},
			expIDs: []string{"run-new", "run-mid", "run-old"},
		},

		"Limit should cap the results": {
			runs: []model.CopyRun{
				testRun("run-old", t0),
				testRun("run-new", t0.Add(time.Hour)),
				testRun("run-mid", t0.Add(time.Minute)),
			},
			limit:  2,
			expIDs: []string{"run-new", "run-mid"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
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
