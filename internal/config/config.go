// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging values from environment variables, command-line flags, an
// optional JSON file and finally the built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings.
	App App `envPrefix:"APP_"`

	// Storage holds the persistence medium and persistence scheduling
	// settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the remote source connection settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Cache holds the query cache settings.
	Cache Cache `envPrefix:"CACHE_"`

	// Import holds the offline import pipeline settings.
	Import Import `envPrefix:"IMPORT_"`

	// Workers holds background worker settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// API holds the local control API settings.
	API API `envPrefix:"API_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level settings.
type App struct {
	// Mode selects what the client does: "serve" (default) runs the local
	// API and workers, "import" prepares offline data, "push" uploads
	// records ready to sync.
	// Env: APP_MODE
	Mode string `env:"MODE"`

	// LogFile is the path of the client log file.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Storage groups persistence settings.
type Storage struct {
	// DB holds the sqlite medium settings.
	DB DB `envPrefix:"DB_"`

	// PersistInterval is the period of the persistence timer.
	// Env: STORAGE_PERSIST_INTERVAL
	PersistInterval time.Duration `env:"PERSIST_INTERVAL"`

	// PersistThrottle is the minimal delay between two persistence passes.
	// Env: STORAGE_PERSIST_THROTTLE
	PersistThrottle time.Duration `env:"PERSIST_THROTTLE"`
}

// DB holds connection settings for the sqlite persistence medium.
type DB struct {
	// DSN is the sqlite file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Adapter holds remote source settings.
type Adapter struct {
	// HTTPAddress is the server base address (e.g. "https://host:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every remote call.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token attached to remote calls.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Cache holds query cache settings.
type Cache struct {
	// WatchQueryCapacity bounds the number of watch registrations; -1 means
	// unbounded and 0 selects the default.
	// Env: CACHE_WATCH_QUERY_CAPACITY
	WatchQueryCapacity int `env:"WATCH_QUERY_CAPACITY"`
}

// Import holds offline import settings.
type Import struct {
	// PageSize is the number of records fetched per remote call.
	// Env: IMPORT_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`

	// MaxProgression is the progress value reached at the end of an import.
	// Env: IMPORT_MAX_PROGRESSION
	MaxProgression int `env:"MAX_PROGRESSION"`

	// Feature is the name under which the last successful import date is
	// recorded.
	// Env: IMPORT_FEATURE
	Feature string `env:"FEATURE"`
}

// Workers holds background worker settings.
type Workers struct {
	// NetworkProbeInterval is the period of the network status probe.
	// Env: WORKERS_NETWORK_PROBE_INTERVAL
	NetworkProbeInterval time.Duration `env:"NETWORK_PROBE_INTERVAL"`
}

// API holds the local control API settings.
type API struct {
	// HTTPAddress is the listen address in "host:port" format. Empty
	// disables the API.
	// Env: API_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// GetStructuredConfig loads, merges and validates the configuration from all
// sources. For each field the first source with a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags (args)
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Defaults
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		withDefaults().
		build()
}
