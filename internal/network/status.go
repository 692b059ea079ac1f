// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package network tracks whether the data server is reachable.
//
// [Status] is the signal the service layer routes on: offline writes go to
// the local stores, online writes go to the server. [Prober] keeps the
// signal up to date by pinging the server periodically.
package network

import (
	"context"
	"sync"
)

// Status is an observable online/offline flag.
type Status struct {
	mu     sync.RWMutex
	online bool
	subs   map[int]chan bool
	nextID int
}

// NewStatus returns a status starting at online.
func NewStatus(online bool) *Status {
	return &Status{online: online, subs: make(map[int]chan bool)}
}

// Online reports the current state.
func (s *Status) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Set updates the state. Subscribers are notified only on change. It
// reports whether the state changed.
func (s *Status) Set(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online == online {
		return false
	}
	s.online = online

	for _, ch := range s.subs {
		// keep only the latest state for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
	return true
}

// Subscribe streams state changes until ctx is done, then closes the
// channel.
func (s *Status) Subscribe(ctx context.Context) <-chan bool {
	ch := make(chan bool, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}
