// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Default values applied to fields left empty by every other source.
const (
	DefaultMode                 = ModeServe
	DefaultDSN                  = "fieldsync.db"
	DefaultPersistInterval      = 10 * time.Second
	DefaultPersistThrottle      = 2 * time.Second
	DefaultRequestTimeout       = 30 * time.Second
	DefaultWatchQueryCapacity   = 3
	DefaultImportPageSize       = 1000
	DefaultMaxProgression       = 100
	DefaultImportFeature        = "trip"
	DefaultNetworkProbeInterval = 30 * time.Second
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flags, err := ParseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	if b.err != nil {
		return b
	}

	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, jsonCfg)

	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{Mode: DefaultMode},
		Storage: Storage{
			DB:              DB{DSN: DefaultDSN},
			PersistInterval: DefaultPersistInterval,
			PersistThrottle: DefaultPersistThrottle,
		},
		Adapter: Adapter{RequestTimeout: DefaultRequestTimeout},
		Cache:   Cache{WatchQueryCapacity: DefaultWatchQueryCapacity},
		Import: Import{
			PageSize:       DefaultImportPageSize,
			MaxProgression: DefaultMaxProgression,
			Feature:        DefaultImportFeature,
		},
		Workers: Workers{NetworkProbeInterval: DefaultNetworkProbeInterval},
	}
}
