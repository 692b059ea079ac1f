// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishobs/fieldsync/internal/logger"
)

// ── Status ────────────────────────────────────────────────────────────────────

func TestStatus_SetNotifiesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStatus(true)
	updates := s.Subscribe(ctx)

	assert.False(t, s.Set(true), "same state is not a change")
	assert.True(t, s.Set(false))
	assert.False(t, s.Online())

	select {
	case online := <-updates:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	cancel()
	select {
	case _, open := <-updates:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestStatus_SlowReaderGetsLatest(t *testing.T) {
	s := NewStatus(true)
	updates := s.Subscribe(t.Context())

	s.Set(false)
	s.Set(true)
	s.Set(false)

	assert.False(t, <-updates)
}

// ── Prober ────────────────────────────────────────────────────────────────────

func TestProber_Probe(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PingPath, r.URL.Path)
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	status := NewStatus(false)
	p, err := NewProber(srv.URL, time.Hour, status, logger.Nop())
	require.NoError(t, err)

	assert.True(t, p.Probe(context.Background()))
	assert.True(t, status.Online())

	healthy.Store(false)
	assert.False(t, p.Probe(context.Background()))
	assert.False(t, status.Online())
}

func TestProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	status := NewStatus(true)
	p, err := NewProber(addr, time.Hour, status, logger.Nop())
	require.NoError(t, err)

	assert.False(t, p.Probe(context.Background()))
	assert.False(t, status.Online())
}

func TestProber_RunProbesUntilCancelled(t *testing.T) {
	var pings atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pings.Add(1)
	}))
	defer srv.Close()

	status := NewStatus(false)
	p, err := NewProber(srv.URL, 10*time.Millisecond, status, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pings.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, status.Online())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("prober did not stop")
	}
}

func TestNewProber_InvalidAddress(t *testing.T) {
	_, err := NewProber("", time.Second, NewStatus(true), logger.Nop())
	assert.Error(t, err)
}
