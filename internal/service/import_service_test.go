// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/mock"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/models"
)

// fakeJob reports fixed values, then waits for release when set.
type fakeJob struct {
	name    string
	reports []int
	release chan struct{}
	err     error
	runs    atomic.Int32
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(ctx context.Context, _ int, report func(int)) error {
	j.runs.Add(1)
	for _, v := range j.reports {
		report(v)
	}
	if j.release != nil {
		select {
		case <-j.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func newTestImportService(t *testing.T, env *testEnv, referentials adapter.ReferentialSource, jobs ...ImportJob) *importService {
	t.Helper()
	return NewImportService(env.cache, env.coordinator, env.settings, referentials, jobs, ImportOptions{}, logger.Nop()).(*importService)
}

func collect(t *testing.T, run *ImportRun) []int {
	t.Helper()
	var values []int
	updates := run.Subscribe()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return values
			}
			values = append(values, v)
		case <-timeout:
			t.Fatal("import run did not end")
			return values
		}
	}
}

func waitRun(t *testing.T, run *ImportRun) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := run.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return err
}

// ── progress ─────────────────────────────────────────────────────────────────

func TestBudgets(t *testing.T) {
	tests := []struct {
		max, steps int
		want       []int
	}{
		{max: 100, steps: 4, want: []int{25, 25, 25, 25}},
		{max: 100, steps: 3, want: []int{33, 33, 34}},
		{max: 10, steps: 4, want: []int{2, 2, 2, 4}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, budgets(tt.max, tt.steps))
	}
}

func TestImportService_ProgressIsMonotonicAndEndsAtMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)

	svc := newTestImportService(t, env, nil,
		&fakeJob{name: "first", reports: []int{5, 3, 20}},
		&fakeJob{name: "second", reports: []int{10}},
	)

	run := svc.ExecuteImport(context.Background(), ImportOptions{MaxProgression: 100})
	values := collect(t, run)

	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards: %v", values)
	}
	for _, v := range values {
		assert.LessOrEqual(t, v, 100)
	}
	assert.Equal(t, 100, values[len(values)-1])
	assert.Equal(t, 100, run.Value())
	assert.NoError(t, run.Err())
	assert.NotEmpty(t, run.ID())
}

func TestImportService_OverReportingJobIsClamped(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)

	job := &fakeJob{name: "greedy", reports: []int{1000}, release: make(chan struct{})}
	svc := newTestImportService(t, env, nil, job, &fakeJob{name: "second"})

	run := svc.ExecuteImport(context.Background(), ImportOptions{MaxProgression: 100})
	assert.Eventually(t, func() bool { return run.Value() == 50 }, time.Second, 5*time.Millisecond)

	close(job.release)
	require.NoError(t, waitRun(t, run))
	assert.Equal(t, 100, run.Value())
}

func TestImportService_ClearsCacheAndRecordsSyncDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	require.NoError(t, env.cache.Write(ctx, cache.Query{Name: "LoadTrips"}, map[string]any{}, cache.Result{"data": []any{}}))
	svc := newTestImportService(t, env, nil, &fakeJob{name: "only"})

	has, err := svc.HasOfflineData(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, waitRun(t, svc.ExecuteImport(ctx, ImportOptions{})))
	assert.Zero(t, env.cache.Len())

	has, err = svc.HasOfflineData(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	var date time.Time
	found, err := env.settings.Get(ctx, "offline.lastSyncDate.default", &date)
	require.NoError(t, err)
	assert.True(t, found)
	assert.WithinDuration(t, time.Now(), date, time.Minute)
}

// ── failure and joining ──────────────────────────────────────────────────────

func TestImportService_FailureStopsRemainingJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	failing := &fakeJob{name: "second", err: errors.New("server down")}
	last := &fakeJob{name: "third"}
	svc := newTestImportService(t, env, nil, &fakeJob{name: "first"}, failing, last)

	first := svc.ExecuteImport(ctx, ImportOptions{})
	err := waitRun(t, first)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 1, importErr.JobIndex)
	assert.Equal(t, "second", importErr.JobName)
	assert.Zero(t, last.runs.Load())
	assert.Nil(t, svc.Running())
	assert.Less(t, first.Value(), first.Max())

	has, err := svc.HasOfflineData(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	failing.err = nil
	retry := svc.ExecuteImport(ctx, ImportOptions{})
	assert.NotSame(t, first, retry)
	require.NoError(t, waitRun(t, retry))
	assert.Equal(t, int32(1), last.runs.Load())
}

func TestImportService_JoinsRunInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	job := &fakeJob{name: "slow", release: make(chan struct{})}
	svc := newTestImportService(t, env, nil, job)

	first := svc.ExecuteImport(ctx, ImportOptions{})
	second := svc.ExecuteImport(ctx, ImportOptions{MaxProgression: 7})
	assert.Same(t, first, second)
	assert.Same(t, first, svc.Running())
	assert.Equal(t, DefaultMaxProgression, first.Max())

	close(job.release)
	require.NoError(t, waitRun(t, first))
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestImportService_LastUpdateDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	date, err := newTestImportService(t, env, nil).LastUpdateDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, date)

	referentials := mock.NewMockReferentialSource(ctrl)
	svc := newTestImportService(t, env, referentials)

	updated := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	referentials.EXPECT().LastUpdateDate(ctx).Return(&updated, nil)
	date, err = svc.LastUpdateDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, *date)

	referentials.EXPECT().LastUpdateDate(ctx).Return(nil, adapter.ErrUnauthorized)
	_, err = svc.LastUpdateDate(ctx)
	assert.ErrorIs(t, err, ErrAuthentication)
}

// ── entity import job ────────────────────────────────────────────────────────

func TestEntityImportJob_PagesAndReplacesStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	_, err := env.coordinator.Save(ctx, &models.Vessel{Name: "stale"}, store.StoreOptions{})
	require.NoError(t, err)

	gomock.InOrder(
		env.remote.EXPECT().Query(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.RemoteRequest) (models.RemoteResult, error) {
				assert.Equal(t, 0, req.Variables["offset"])
				assert.Equal(t, 2, req.Variables["size"])
				return vesselsResult(t, 3, 1, 2), nil
			}),
		env.remote.EXPECT().Query(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.RemoteRequest) (models.RemoteResult, error) {
				assert.Equal(t, 2, req.Variables["offset"])
				return vesselsResult(t, 3, 3), nil
			}),
	)

	job, err := NewEntityImportJob(models.VesselTypeName, env.docs, env.remote, env.coordinator, 2, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "import Vessel", job.Name())

	var reports []int
	require.NoError(t, job.Run(ctx, 30, func(v int) { reports = append(reports, v) }))

	require.NotEmpty(t, reports)
	for _, v := range reports {
		assert.LessOrEqual(t, v, 30)
	}
	assert.Equal(t, 30, reports[len(reports)-1])

	page, err := env.coordinator.LoadAll(ctx, models.VesselTypeName, models.LoadOptions{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, page.IDs())
}

func TestEntityImportJob_ReferentialVariables(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)
	ctx := context.Background()

	env.remote.EXPECT().Query(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.RemoteRequest) (models.RemoteResult, error) {
			assert.Equal(t, "LoadReferentials", req.Operation)
			assert.Equal(t, models.GearTypeName, req.Variables["entityName"])
			return remoteResult(t, intPtr(1), map[string]any{"id": 9, "label": "OTB", "__typename": "Gear"}), nil
		})

	job, err := NewEntityImportJob(models.GearTypeName, env.docs, env.remote, env.coordinator, 10, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx, 10, func(int) {}))

	gear, err := env.coordinator.Load(ctx, models.GearTypeName, 9)
	require.NoError(t, err)
	assert.Equal(t, models.GearTypeName, gear.TypeName())
	assert.Equal(t, "OTB", gear.(*models.Referential).Label)
}

func TestEntityImportJob_RemoteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)

	env.remote.EXPECT().Query(gomock.Any(), gomock.Any()).Return(models.RemoteResult{}, adapter.ErrInternalServerError)

	job, err := NewEntityImportJob(models.VesselTypeName, env.docs, env.remote, env.coordinator, 10, logger.Nop())
	require.NoError(t, err)

	err = job.Run(context.Background(), 10, func(int) {})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestNewEntityImportJob_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, true)

	_, err := NewEntityImportJob("Unicorn", env.docs, env.remote, env.coordinator, 10, logger.Nop())
	assert.ErrorIs(t, err, ErrNoDocuments)
}
