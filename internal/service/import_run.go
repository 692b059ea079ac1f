// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
)

// ImportRun broadcasts the progress of one import. Progress never
// decreases and ends at Max on success.
type ImportRun struct {
	id  string
	max int

	mu       sync.Mutex
	value    int
	subs     []chan int
	finished bool
	err      error
	done     chan struct{}
}

func newImportRun(id string, max int) *ImportRun {
	return &ImportRun{id: id, max: max, done: make(chan struct{})}
}

// ID identifies the run.
func (r *ImportRun) ID() string {
	return r.id
}

// Max returns the progress value of a completed run.
func (r *ImportRun) Max() int {
	return r.max
}

// Value returns the current progress.
func (r *ImportRun) Value() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Subscribe streams progress values, starting with the current one. A slow
// reader only sees the latest value. The channel is closed when the run
// ends.
func (r *ImportRun) Subscribe() <-chan int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan int, 1)
	ch <- r.value
	if r.finished {
		close(ch)
		return ch
	}
	r.subs = append(r.subs, ch)
	return ch
}

// Done is closed when the run ends.
func (r *ImportRun) Done() <-chan struct{} {
	return r.done
}

// Err returns the failure of an ended run, nil on success or while running.
func (r *ImportRun) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the run ends or ctx is done.
func (r *ImportRun) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// set raises the progress to value. Lower values are ignored.
func (r *ImportRun) set(value int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished || value <= r.value {
		return
	}
	r.value = min(value, r.max)
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.value
	}
}

func (r *ImportRun) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finished = true
	r.err = err
	for _, ch := range r.subs {
		close(ch)
	}
	r.subs = nil
	close(r.done)
}
