// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds_Lookup(t *testing.T) {
	kinds := DefaultKinds()

	kind, err := kinds.Lookup(TripTypeName)
	require.NoError(t, err)
	assert.Equal(t, LayoutPerRecord, kind.Layout)
	assert.IsType(t, &Trip{}, kind.New())

	kind, err = kinds.Lookup(TrashName(VesselTypeName))
	require.NoError(t, err)
	assert.Equal(t, VesselTypeName, kind.Name)

	kind, err = kinds.Lookup(GearTypeName)
	require.NoError(t, err)
	assert.Equal(t, GearTypeName, kind.New().TypeName())

	_, err = kinds.Lookup("Unicorn")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKinds_Names(t *testing.T) {
	kinds := NewKinds(Kind{Name: "B"}, Kind{Name: "A"})
	kinds.Register(Kind{Name: "C"})
	assert.Equal(t, []string{"A", "B", "C"}, kinds.Names())
}

func TestTrashName(t *testing.T) {
	assert.Equal(t, "Trash#Trip", TrashName(TripTypeName))
	assert.Equal(t, "Trash#Trip", TrashName("Trash#Trip"))
	assert.True(t, IsTrashName("Trash#Trip"))
	assert.False(t, IsTrashName(TripTypeName))
}

func TestLocalAndRemoteIDs(t *testing.T) {
	v := &Vessel{}
	assert.False(t, IsLocal(v))
	assert.False(t, IsRemote(v))

	v.SetEntityID(-3)
	assert.True(t, IsLocal(v))

	v.SetEntityID(0)
	assert.True(t, IsRemote(v))

	v.ClearEntityID()
	_, ok := v.EntityID()
	assert.False(t, ok)
}

func TestTrip_SummaryAndChildren(t *testing.T) {
	trip := &Trip{
		Base:         Base{ID: Int64Ptr(-1)},
		ProgramLabel: "SUMARiS",
		SyncStatus:   SyncStatusDirty,
		Comments:     "rough sea",
		Operations:   []*Operation{{RankOrder: 1}, nil, {RankOrder: 2}},
	}

	assert.Len(t, trip.Children(), 2)

	summary, ok := trip.Summary().(*TripSummary)
	require.True(t, ok)
	assert.Equal(t, 3, summary.OperationCount)
	assert.Equal(t, SyncStatusDirty, summary.SynchronizationStatus())
	id, _ := summary.EntityID()
	assert.Equal(t, int64(-1), id)
}

func TestPage_IDs(t *testing.T) {
	page := Page{Data: []Entity{
		&Vessel{Base: Base{ID: Int64Ptr(4)}},
		&Vessel{},
		&Vessel{Base: Base{ID: Int64Ptr(-2)}},
	}}
	assert.Equal(t, []int64{4, -2}, page.IDs())
}

func TestRemoteResult_Decode(t *testing.T) {
	result := RemoteResult{Data: []json.RawMessage{
		json.RawMessage(`{"id":1,"label":"OTB","entityName":"Gear"}`),
		json.RawMessage(`{"id":2,"label":"GNS","entityName":"Gear"}`),
	}}

	items, err := result.Decode(func() Entity { return NewReferential(GearTypeName) })
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "GNS", items[1].(*Referential).Label)

	_, err = RemoteResult{Data: []json.RawMessage{json.RawMessage(`[]`)}}.Decode(func() Entity { return &Vessel{} })
	assert.Error(t, err)
}
