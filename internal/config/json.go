// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON shape of the configuration.
type StructuredJSONConfig struct {
	App struct {
		Mode    string `json:"mode"`
		LogFile string `json:"log_file"`
	} `json:"app,omitempty"`

	Storage struct {
		DSN             string   `json:"dsn"`
		PersistInterval Duration `json:"persist_interval"`
		PersistThrottle Duration `json:"persist_throttle"`
	} `json:"storage,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		Token          string   `json:"token"`
	} `json:"adapter,omitempty"`

	Cache struct {
		WatchQueryCapacity int `json:"watch_query_capacity"`
	} `json:"cache,omitempty"`

	Import struct {
		PageSize       int    `json:"page_size"`
		MaxProgression int    `json:"max_progression"`
		Feature        string `json:"feature"`
	} `json:"import,omitempty"`

	Workers struct {
		NetworkProbeInterval Duration `json:"network_probe_interval"`
	} `json:"workers,omitempty"`

	API struct {
		HTTPAddress string `json:"http_address"`
	} `json:"api,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Mode:    jsonCfg.App.Mode,
			LogFile: jsonCfg.App.LogFile,
		},
		Storage: Storage{
			DB:              DB{DSN: jsonCfg.Storage.DSN},
			PersistInterval: time.Duration(jsonCfg.Storage.PersistInterval),
			PersistThrottle: time.Duration(jsonCfg.Storage.PersistThrottle),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			Token:          jsonCfg.Adapter.Token,
		},
		Cache: Cache{WatchQueryCapacity: jsonCfg.Cache.WatchQueryCapacity},
		Import: Import{
			PageSize:       jsonCfg.Import.PageSize,
			MaxProgression: jsonCfg.Import.MaxProgression,
			Feature:        jsonCfg.Import.Feature,
		},
		Workers: Workers{NetworkProbeInterval: time.Duration(jsonCfg.Workers.NetworkProbeInterval)},
		API:     API{HTTPAddress: jsonCfg.API.HTTPAddress},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as from nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
