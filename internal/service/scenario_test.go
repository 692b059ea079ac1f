// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fishobs/fieldsync/models"
)

// TestOfflineTripLifecycle creates a trip offline, terminates it, then
// pushes it once the network is back.
func TestOfflineTripLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// offline: create, then terminate
	saved, err := env.entities.Save(ctx, &models.Trip{
		ProgramLabel: "SUMARiS",
		SyncStatus:   models.SyncStatusDirty,
		Operations:   []*models.Operation{{RankOrder: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(-1), entityID(t, saved))

	terminated, err := env.rootData.Terminate(ctx, saved.(models.RootEntity))
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusReadyToSync, terminated.SynchronizationStatus())

	// online: watch the trip list, then push
	env.status.Set(true)

	env.remote.EXPECT().
		Query(gomock.Any(), gomock.Any()).
		Return(remoteResult(t, intPtr(0)), nil)
	pages, err := env.entities.WatchAll(ctx, models.TripTypeName, models.LoadOptions{Size: 20})
	require.NoError(t, err)
	assert.Zero(t, receivePage(t, pages).Total)

	env.remote.EXPECT().
		Mutate(gomock.Any(), gomock.Any()).
		Return(remoteResult(t, nil, serverTrip(100, 200)), nil)

	synced, err := env.rootData.SynchronizeByID(ctx, models.TripTypeName, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), entityID(t, synced))
	assert.Equal(t, models.SyncStatusSync, synced.SynchronizationStatus())

	local, err := env.coordinator.LoadAll(ctx, models.TripTypeName, models.LoadOptions{Size: -1})
	require.NoError(t, err)
	assert.NotContains(t, local.IDs(), int64(-1))

	watched := receivePage(t, pages)
	assert.Equal(t, []int64{100}, watched.IDs())
	assert.Equal(t, 1, watched.Total)
	assert.Equal(t, models.SyncStatusSync, watched.Data[0].(*models.Trip).SyncStatus)

	require.NoError(t, env.coordinator.PersistAll(ctx))
}
