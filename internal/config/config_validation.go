// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks invariants of the merged [StructuredConfig] that do not
// depend on the client projection.
func (cfg *StructuredConfig) validate() error {
	if cfg.Cache.WatchQueryCapacity < -1 {
		return fmt.Errorf("%w: watch query capacity %d", ErrInvalidCacheConfigs, cfg.Cache.WatchQueryCapacity)
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	switch cfg.App.Mode {
	case ModeServe, ModeImport, ModePush:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidAppConfigs, cfg.App.Mode)
	}

	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.PersistThrottle <= 0 || cfg.Storage.PersistInterval <= 0 {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Cache.WatchQueryCapacity == 0 || cfg.Cache.WatchQueryCapacity < -1 {
		return ErrInvalidCacheConfigs
	}

	if cfg.Import.PageSize <= 0 || cfg.Import.MaxProgression <= 0 || cfg.Import.Feature == "" {
		return ErrInvalidImportConfigs
	}

	if cfg.Workers.NetworkProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
