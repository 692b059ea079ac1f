// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_RoundTrip(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	settings := NewSettings(medium)

	var date time.Time
	found, err := settings.Get(ctx, "offline.lastSyncDate.trip", &date)
	require.NoError(t, err)
	assert.False(t, found)

	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, settings.Set(ctx, "offline.lastSyncDate.trip", want))
	assert.Equal(t, []string{"settings.offline.lastSyncDate.trip"}, medium.Keys("settings."))

	found, err = settings.Get(ctx, "offline.lastSyncDate.trip", &date)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, want.Equal(date))

	require.NoError(t, settings.Remove(ctx, "offline.lastSyncDate.trip"))
	assert.Empty(t, medium.Keys("settings."))
}

func TestSettings_DecodeError(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	require.NoError(t, medium.Set(ctx, "settings.count", []byte("not json")))

	var n int
	_, err := NewSettings(medium).Get(ctx, "count", &n)
	assert.ErrorIs(t, err, ErrDecodingEntity)
}
