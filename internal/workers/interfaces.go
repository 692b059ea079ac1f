// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that runs the
// persistence scheduler, the network prober and the network watcher of the
// client in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// Run blocks until ctx is done.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    <-ctx.Done()
//	}
type Worker interface {
	Run(ctx context.Context)
}

// WorkerFunc adapts a blocking function to [Worker].
type WorkerFunc func(ctx context.Context)

// Run implements Worker.
func (f WorkerFunc) Run(ctx context.Context) {
	f(ctx)
}
