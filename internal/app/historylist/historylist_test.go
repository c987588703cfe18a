package historylist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pcp/internal/app/historylist"
	"github.com/slok/pcp/internal/log"
	"github.com/slok/pcp/internal/model"
	"github.com/slok/pcp/internal/storage/memory"
)

func testRun(id string, startedAt time.Time) model.CopyRun {
	return model.CopyRun{
		ID:          id,
		Source:      "/tmp/src.bin",
		Destination: "/tmp/dst.bin",
		FileSize:    100,
		SliceCount:  2,
		Concurrency: 2,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(time.Second),
		Result: model.CopyRunResult{
			TotalBytesCopied: 100,
			Slices: []model.SliceResult{
				{Index: 0, BytesCopied: 50, Status: model.SliceStatusSuccess},
				{Index: 1, BytesCopied: 50, Status: model.SliceStatusSuccess},
			},
			Outcome: model.OutcomeSuccess,
		},
	}
}

func TestNewService(t *testing.T) {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	tests := map[string]struct {
		cfg    historylist.ServiceConfig
		expErr bool
	}{
		"Valid configuration should create service successfully": {
			cfg: historylist.ServiceConfig{Repository: repo, Logger: log.Noop},
		},

		"Missing repository should fail": {
			cfg:    historylist.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			svc, err := historylist.NewService(test.cfg)

			if test.expErr {
				assert.Error(err)
				assert.Nil(svc)
			} else {
				assert.NoError(err)
				assert.NotNil(svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		runs   []model.CopyRun
		req    historylist.Request
		expIDs []string
		expErr error
	}{
		"No runs should return an empty list": {
			req:    historylist.Request{},
			expIDs: []string{},
		},

		"Runs should be listed newest first": {
			runs: []model.CopyRun{
				testRun("run-1", t0),
				testRun("run-3", t0.Add(2*time.Minute)),
				testRun("run-2", t0.Add(time.Minute)),
			},
			req:    historylist.Request{},
			expIDs: []string{"run-3", "run-2", "run-1"},
		},

		"Limit should cap the returned runs": {
			runs: []model.CopyRun{
				testRun("run-1", t0),
				testRun("run-2", t0.Add(time.Minute)),
				testRun("run-3", t0.Add(2*time.Minute)),
			},
			req:    historylist.Request{Limit: 2},
			expIDs: []string{"run-3", "run-2"},
		},

		"Negative limit should fail": {
			req:    historylist.Request{Limit: -1},
			expErr: model.ErrNotValid,
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

			svc, err := historylist.NewService(historylist.ServiceConfig{Repository: repo, Logger: log.Noop})
			require.NoError(err)

			runs, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}

			require.NoError(err)
			ids := []string{}
			for _, run := range runs {
				ids = append(ids, run.ID)
			}
			assert.Equal(test.expIDs, ids)
		})
	}
}
