// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "context"

//go:generate mockgen -source=medium.go -destination=../mock/medium_mock.go -package=mock

// Medium is the key-value persistence medium behind the entity stores.
// Values are opaque encoded bytes.
type Medium interface {
	// Get returns the value stored under key. The boolean is false when the
	// key does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
