// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/mock"
	"github.com/fishobs/fieldsync/models"
)

var tripsQuery = cache.Query{
	Name:     "LoadTrips",
	Document: "query LoadTrips($offset: Int, $size: Int, $filter: TripFilter) { data: trips(offset: $offset, size: $size, filter: $filter) { id programLabel } total: tripsCount(filter: $filter) }",
}

func tripItem(id int64, program string) cache.Item {
	return cache.Item{cache.TypenameField: "Trip", "id": id, "programLabel": program}
}

func tripsResult(items ...cache.Item) cache.Result {
	data := make([]any, 0, len(items))
	for _, item := range items {
		data = append(data, item)
	}
	return cache.Result{"data": data, "total": len(items)}
}

func watchRequest(vars map[string]any, policy cache.FetchPolicy) cache.WatchRequest {
	return cache.WatchRequest{
		Query:       tripsQuery,
		Variables:   vars,
		ArrayField:  "data",
		TotalField:  "total",
		FetchPolicy: policy,
	}
}

func assertClosed(t *testing.T, ch <-chan cache.Result) {
	t.Helper()
	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

// ── dedup ─────────────────────────────────────────────────────────────────────

func TestRegistry_DeduplicatesIdenticalWatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	store := cache.NewMemoryStore()
	registry := cache.NewRegistry(store, transport, cache.RegistryOptions{}, logger.Nop())
	ctx := context.Background()
	vars := map[string]any{"offset": 0, "size": 20}

	transport.EXPECT().
		Fetch(gomock.Any(), tripsQuery, vars).
		Return(tripsResult(tripItem(1, "SIH")), nil).
		Times(1)

	first, err := registry.Watch(ctx, watchRequest(vars, cache.CacheFirst))
	require.NoError(t, err)
	second, err := registry.Watch(ctx, watchRequest(map[string]any{"size": 20, "offset": 0}, cache.CacheFirst))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 2, first.Refs())
	assert.Equal(t, 1, registry.Len())

	first.Release()
	assert.Equal(t, 1, registry.Len())

	second.Release()
	assert.Equal(t, 0, registry.Len())
	assertClosed(t, first.Updates())
	assert.Equal(t, 0, store.Subscribers())
}

func TestRegistry_JoinRefetchesNetworkPolicies(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	registry := cache.NewRegistry(cache.NewMemoryStore(), transport, cache.RegistryOptions{}, logger.Nop())
	vars := map[string]any{"size": 10}

	transport.EXPECT().
		Fetch(gomock.Any(), tripsQuery, vars).
		Return(tripsResult(), nil).
		Times(2)

	reg, err := registry.Watch(context.Background(), watchRequest(vars, cache.NetworkOnly))
	require.NoError(t, err)
	_, err = registry.Watch(context.Background(), watchRequest(vars, cache.NetworkOnly))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Refs())
}

func TestRegistry_CacheFirstUsesCachedResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	store := cache.NewMemoryStore()
	vars := map[string]any{"size": 10}
	require.NoError(t, store.Write(context.Background(), tripsQuery, vars, tripsResult()))

	registry := cache.NewRegistry(store, transport, cache.RegistryOptions{}, logger.Nop())
	_, err := registry.Watch(context.Background(), watchRequest(vars, cache.CacheFirst))
	require.NoError(t, err)
}

func TestRegistry_FetchErrorDoesNotRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	registry := cache.NewRegistry(cache.NewMemoryStore(), transport, cache.RegistryOptions{}, logger.Nop())

	transport.EXPECT().
		Fetch(gomock.Any(), tripsQuery, gomock.Any()).
		Return(nil, errors.New("offline"))

	_, err := registry.Watch(context.Background(), watchRequest(map[string]any{}, cache.NetworkOnly))
	require.Error(t, err)
	assert.Equal(t, 0, registry.Len())
}

// ── capacity ──────────────────────────────────────────────────────────────────

func TestRegistry_EvictsOldestPastCapacity(t *testing.T) {
	registry := cache.NewRegistry(cache.NewMemoryStore(), nil, cache.RegistryOptions{Capacity: 2}, logger.Nop())
	ctx := context.Background()

	oldest, err := registry.Watch(ctx, watchRequest(map[string]any{"offset": 0}, cache.CacheOnly))
	require.NoError(t, err)
	_, err = registry.Watch(ctx, watchRequest(map[string]any{"offset": 10}, cache.CacheOnly))
	require.NoError(t, err)
	_, err = registry.Watch(ctx, watchRequest(map[string]any{"offset": 20}, cache.CacheOnly))
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	assertClosed(t, oldest.Updates())

	// releasing an evicted registration is harmless
	oldest.Release()
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_Capacities(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		watches  int
		want     int
	}{
		{name: "default", capacity: 0, watches: 5, want: cache.DefaultCapacity},
		{name: "unbounded", capacity: cache.Unbounded, watches: 5, want: 5},
		{name: "bounded", capacity: 4, watches: 6, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := cache.NewRegistry(cache.NewMemoryStore(), nil, cache.RegistryOptions{Capacity: tt.capacity}, logger.Nop())
			for i := 0; i < tt.watches; i++ {
				_, err := registry.Watch(context.Background(), watchRequest(map[string]any{"offset": i}, cache.CacheOnly))
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, registry.Len())
		})
	}
}

// ── fan-out ───────────────────────────────────────────────────────────────────

func TestRegistry_FanOutInsertAndRemove(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	registry := cache.NewRegistry(store, nil, cache.RegistryOptions{Capacity: cache.Unbounded}, logger.Nop())

	sihVars := map[string]any{"size": 10, "program": "SIH"}
	otherVars := map[string]any{"size": 10, "program": "OTHER"}
	require.NoError(t, store.Write(ctx, tripsQuery, sihVars, tripsResult(tripItem(1, "SIH"))))
	require.NoError(t, store.Write(ctx, tripsQuery, otherVars, tripsResult(tripItem(2, "OTHER"))))

	byProgram := func(program string) func(cache.Item) bool {
		return func(item cache.Item) bool { return item["programLabel"] == program }
	}

	sihReq := watchRequest(sihVars, cache.CacheOnly)
	sihReq.InsertFilter = byProgram("SIH")
	sihReq.Sort = cache.SortComparator("id", false)
	sih, err := registry.Watch(ctx, sihReq)
	require.NoError(t, err)

	otherReq := watchRequest(otherVars, cache.CacheOnly)
	otherReq.InsertFilter = byProgram("OTHER")
	_, err = registry.Watch(ctx, otherReq)
	require.NoError(t, err)

	registry.InsertIntoMutableQueries(ctx, "LoadTrips", tripItem(-1, "SIH"))

	result, ok := store.Read(ctx, tripsQuery, sihVars)
	require.True(t, ok)
	assert.Len(t, result["data"], 2)
	assert.Equal(t, 2, result["total"])
	first := result["data"].([]any)[0].(cache.Item)
	assert.Equal(t, int64(-1), first["id"], "sorted by id")

	select {
	case update := <-sih.Updates():
		assert.Len(t, update["data"], 2)
	case <-time.After(time.Second):
		t.Fatal("watch not notified")
	}

	result, ok = store.Read(ctx, tripsQuery, otherVars)
	require.True(t, ok)
	assert.Len(t, result["data"], 1, "filtered out by the other registration")

	registry.RemoveFromMutableQueries(ctx, "LoadTrips", -1, 2)

	result, _ = store.Read(ctx, tripsQuery, sihVars)
	assert.Len(t, result["data"], 1)
	assert.Equal(t, 1, result["total"])
	result, _ = store.Read(ctx, tripsQuery, otherVars)
	assert.Len(t, result["data"], 0)
	assert.Equal(t, 0, result["total"])

	registry.InsertIntoMutableQueries(ctx, "LoadVessels", tripItem(5, "SIH"))
	result, _ = store.Read(ctx, tripsQuery, sihVars)
	assert.Len(t, result["data"], 1, "other queries are untouched")
}

func TestRegistry_UpdateMutableQueries(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	registry := cache.NewRegistry(store, nil, cache.RegistryOptions{Capacity: cache.Unbounded}, logger.Nop())

	vars := map[string]any{"size": 10, "program": "SIH"}
	require.NoError(t, store.Write(ctx, tripsQuery, vars, tripsResult(tripItem(1, "SIH"), tripItem(2, "SIH"))))

	req := watchRequest(vars, cache.CacheOnly)
	req.InsertFilter = func(item cache.Item) bool { return item["programLabel"] == "SIH" }
	req.Sort = cache.SortComparator("id", false)
	_, err := registry.Watch(ctx, req)
	require.NoError(t, err)

	updated := tripItem(2, "SIH")
	updated["comments"] = "edited"
	registry.UpdateMutableQueries(ctx, "LoadTrips", updated)

	result, ok := store.Read(ctx, tripsQuery, vars)
	require.True(t, ok)
	require.Len(t, result["data"], 2)
	assert.Equal(t, "edited", result["data"].([]any)[1].(cache.Item)["comments"])
	assert.Equal(t, 2, result["total"], "replacing keeps the total")

	registry.UpdateMutableQueries(ctx, "LoadTrips", tripItem(3, "SIH"))
	result, _ = store.Read(ctx, tripsQuery, vars)
	assert.Len(t, result["data"], 3)
	assert.Equal(t, 3, result["total"])

	registry.UpdateMutableQueries(ctx, "LoadTrips", tripItem(1, "OTHER"))
	result, _ = store.Read(ctx, tripsQuery, vars)
	assert.Len(t, result["data"], 2, "a record leaving the filter is removed")
	assert.Equal(t, 2, result["total"])
}

func TestItemFromEntity(t *testing.T) {
	trip := &models.Trip{ProgramLabel: "SIH"}
	trip.SetEntityID(-4)

	item, err := cache.ItemFromEntity(trip)
	require.NoError(t, err)

	identity, ok := cache.Identity(item)
	require.True(t, ok)
	assert.Equal(t, "Trip:-4", identity)
	assert.Equal(t, "SIH", item["programLabel"])
}
