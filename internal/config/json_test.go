// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	p := writeTempJSON(t, `{
		"app": {"mode": "push", "log_file": "client.log"},
		"storage": {"dsn": "field.db", "persist_interval": "20s", "persist_throttle": 1000000000},
		"adapter": {"http_address": "https://server", "request_timeout": "45s", "token": "t"},
		"cache": {"watch_query_capacity": 7},
		"import": {"page_size": 25, "max_progression": 1000, "feature": "trip"},
		"workers": {"network_probe_interval": "1m"},
		"api": {"http_address": "localhost:9000"}
	}`)

	cfg, err := parseJSON(p)
	require.NoError(t, err)

	assert.Equal(t, "push", cfg.App.Mode)
	assert.Equal(t, "client.log", cfg.App.LogFile)
	assert.Equal(t, "field.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 20*time.Second, cfg.Storage.PersistInterval)
	assert.Equal(t, time.Second, cfg.Storage.PersistThrottle)
	assert.Equal(t, "https://server", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "t", cfg.Adapter.Token)
	assert.Equal(t, 7, cfg.Cache.WatchQueryCapacity)
	assert.Equal(t, 25, cfg.Import.PageSize)
	assert.Equal(t, 1000, cfg.Import.MaxProgression)
	assert.Equal(t, time.Minute, cfg.Workers.NetworkProbeInterval)
	assert.Equal(t, "localhost:9000", cfg.API.HTTPAddress)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	cfg, err := parseJSON("definitely-does-not-exist.json")
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseJSON_Malformed(t *testing.T) {
	p := writeTempJSON(t, `{"storage": `)

	cfg, err := parseJSON(p)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDuration_BadString(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"ten seconds"`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))
}
