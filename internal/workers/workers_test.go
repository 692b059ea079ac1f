// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fishobs/fieldsync/internal/logger"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called and blocks until ctx is done.
type mockWorker struct {
	runCount atomic.Int32
}

func (m *mockWorker) Run(ctx context.Context) {
	m.runCount.Add(1)
	<-ctx.Done()
}

func runUntilCancelled(t *testing.T, ctx context.Context, cancel context.CancelFunc, ws *Workers) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &mockWorker{}, &mockWorker{}, &mockWorker{}
	ws := NewWorkers(logger.Nop()).Add("one", w1).Add("two", w2).Add("three", w3)
	assert.Equal(t, 3, ws.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return w1.runCount.Load() == 1 && w2.runCount.Load() == 1 && w3.runCount.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// should return right away without workers
	runUntilCancelled(t, ctx, cancel, NewWorkers(logger.Nop()))
}

func TestWorkers_Run_WorkerFunc(t *testing.T) {
	var calls atomic.Int32
	ws := NewWorkers(logger.Nop()).Add("func", WorkerFunc(func(ctx context.Context) {
		calls.Add(1)
		<-ctx.Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestWorkers_Run_ReturnsWhenWorkersReturn(t *testing.T) {
	var calls atomic.Int32
	ws := NewWorkers(logger.Nop()).Add("short", WorkerFunc(func(context.Context) {
		calls.Add(1)
	}))

	ws.Run(context.Background())
	ws.Run(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}
