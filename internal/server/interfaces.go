// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the lifecycle contract for transport servers managed by
// this package.
type Server interface {
	// RunServer starts serving requests and blocks until ctx is done and the
	// server has stopped.
	RunServer(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown(ctx context.Context) error
}
