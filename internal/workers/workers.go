// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"

	"github.com/fishobs/fieldsync/internal/logger"
)

type namedWorker struct {
	name   string
	worker Worker
}

// Workers runs a set of named workers side by side.
type Workers struct {
	workers []namedWorker
	logger  *logger.Logger
}

// NewWorkers returns an empty aggregate.
func NewWorkers(log *logger.Logger) *Workers {
	return &Workers{logger: log.WithComponent("workers")}
}

// Add registers a worker. It must be called before Run.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, namedWorker{name: name, worker: worker})
	return w
}

// Len returns the number of registered workers.
func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker and blocks until all of them returned. Workers
// stop when ctx is done.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, nw := range w.workers {
		wg.Go(func() {
			w.logger.Debug().Str("func", "Workers.Run").Str("worker", nw.name).Msg("worker started")
			nw.worker.Run(ctx)
			w.logger.Debug().Str("func", "Workers.Run").Str("worker", nw.name).Msg("worker stopped")
		})
	}
	wg.Wait()
}
