// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors returned for malformed requests. Callers can match
// against them with [errors.Is].
var (
	// ErrInvalidID is returned when the {id} path parameter is not an
	// integer.
	ErrInvalidID = errors.New("invalid record id")

	// ErrInvalidQuery is returned when a paging query parameter cannot be
	// parsed.
	ErrInvalidQuery = errors.New("invalid query parameter")

	// ErrInvalidBody is returned when the request body is not valid JSON for
	// the addressed kind.
	ErrInvalidBody = errors.New("invalid request body")
)
