// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Client modes.
const (
	ModeServe  = "serve"
	ModeImport = "import"
	ModePush   = "push"
)

// ClientApp holds process-level client settings.
type ClientApp struct {
	Mode    string
	LogFile string
}

// ClientAdapter holds network settings used by the remote source.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	Token          string
}

// ClientStorage holds persistence medium and scheduling settings.
type ClientStorage struct {
	// DSN is the sqlite file path of the persistence medium.
	DSN string
	// PersistInterval is the period of the coordinator persistence timer.
	PersistInterval time.Duration
	// PersistThrottle is the minimal delay between two persistence passes.
	PersistThrottle time.Duration
}

// ClientCache holds query cache settings.
type ClientCache struct {
	WatchQueryCapacity int
}

// ClientImport holds offline import settings.
type ClientImport struct {
	PageSize       int
	MaxProgression int
	Feature        string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	NetworkProbeInterval time.Duration
}

// ClientAPI contains the local control API settings.
type ClientAPI struct {
	HTTPAddress string
}

// ClientConfig is the client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Cache   ClientCache
	Import  ClientImport
	Workers ClientWorkers
	API     ClientAPI
}

// GetClientConfig builds and validates the client configuration from the
// merged structured configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			Mode:    cfg.App.Mode,
			LogFile: cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DSN:             cfg.Storage.DB.DSN,
			PersistInterval: cfg.Storage.PersistInterval,
			PersistThrottle: cfg.Storage.PersistThrottle,
		},
		Cache: ClientCache{
			WatchQueryCapacity: cfg.Cache.WatchQueryCapacity,
		},
		Import: ClientImport{
			PageSize:       cfg.Import.PageSize,
			MaxProgression: cfg.Import.MaxProgression,
			Feature:        cfg.Import.Feature,
		},
		Workers: ClientWorkers{NetworkProbeInterval: cfg.Workers.NetworkProbeInterval},
		API:     ClientAPI{HTTPAddress: cfg.API.HTTPAddress},
	}
}
