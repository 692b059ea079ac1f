// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/mock"
	"github.com/fishobs/fieldsync/internal/network"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/models"
)

type testEnv struct {
	coordinator *store.Coordinator
	settings    *store.Settings
	remote      *mock.MockRemoteSource
	cache       *cache.MemoryStore
	registry    *cache.Registry
	status      *network.Status
	docs        DocumentSet
	rootData    *rootDataService
	entities    *entityService
}

func newTestEnv(t *testing.T, ctrl *gomock.Controller, online bool) *testEnv {
	t.Helper()

	medium := store.NewMemoryMedium()
	coordinator := store.NewCoordinator(models.DefaultKinds(), medium, store.CoordinatorOptions{
		PersistInterval: time.Hour,
		PersistThrottle: 10 * time.Millisecond,
	}, logger.Nop())

	remote := mock.NewMockRemoteSource(ctrl)
	cacheStore := cache.NewMemoryStore()
	registry := cache.NewRegistry(cacheStore, adapter.NewQueryTransport(remote), cache.RegistryOptions{}, logger.Nop())
	status := network.NewStatus(online)
	docs := DefaultDocuments()

	rootData := NewRootDataService(coordinator, remote, registry, status, docs, logger.Nop()).(*rootDataService)
	entities := NewEntityService(coordinator, remote, registry, cacheStore, status, docs, rootData, logger.Nop()).(*entityService)

	return &testEnv{
		coordinator: coordinator,
		settings:    store.NewSettings(medium),
		remote:      remote,
		cache:       cacheStore,
		registry:    registry,
		status:      status,
		docs:        docs,
		rootData:    rootData,
		entities:    entities,
	}
}

// seedTrips replaces the local trip store with trips, keeping their ids.
func (e *testEnv) seedTrips(t *testing.T, trips ...*models.Trip) {
	t.Helper()
	entities := make([]models.Entity, len(trips))
	for i, trip := range trips {
		entities[i] = trip
	}
	_, err := e.coordinator.SaveAll(context.Background(), entities, store.StoreOptions{EntityName: models.TripTypeName, Reset: true})
	require.NoError(t, err)
}

func localTrip(id int64, status models.SyncStatus, operations int) *models.Trip {
	trip := &models.Trip{ProgramLabel: "SUMARiS", SyncStatus: status}
	trip.SetEntityID(id)
	for i := range operations {
		trip.Operations = append(trip.Operations, &models.Operation{RankOrder: i + 1})
	}
	return trip
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func remoteResult(t *testing.T, total *int, items ...any) models.RemoteResult {
	t.Helper()
	result := models.RemoteResult{Data: make([]json.RawMessage, 0, len(items)), Total: total}
	for _, item := range items {
		result.Data = append(result.Data, raw(t, item))
	}
	return result
}

func intPtr(v int) *int {
	return &v
}

func serverTrip(id int64, opIDs ...int64) map[string]any {
	ops := make([]map[string]any, 0, len(opIDs))
	for i, opID := range opIDs {
		ops = append(ops, map[string]any{"id": opID, "rankOrderOnPeriod": i + 1, "__typename": "Operation"})
	}
	return map[string]any{
		"id":                    id,
		"programLabel":          "SUMARiS",
		"synchronizationStatus": "SYNC",
		"operations":            ops,
		"__typename":            models.TripTypeName,
	}
}

func entityID(t *testing.T, e models.Entity) int64 {
	t.Helper()
	id, ok := e.EntityID()
	require.True(t, ok)
	return id
}
