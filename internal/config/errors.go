// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates an unknown client mode.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidAdapterConfigs indicates invalid remote source settings
	// (for example, missing server address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or non-positive persistence periods).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidCacheConfigs indicates a watch query capacity that is
	// neither positive nor -1.
	ErrInvalidCacheConfigs = errors.New("invalid cache configuration")
	// ErrInvalidImportConfigs indicates invalid import pipeline settings.
	ErrInvalidImportConfigs = errors.New("invalid import configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero probe interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
