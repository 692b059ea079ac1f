// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import "errors"

var (
	// ErrNotAnArray is returned when the configured array field of a
	// result is missing or is not a list of items.
	ErrNotAnArray = errors.New("array field not found in result")

	// ErrHashingVariables is returned when query variables cannot be
	// hashed into a cache key.
	ErrHashingVariables = errors.New("error hashing query variables")
)
