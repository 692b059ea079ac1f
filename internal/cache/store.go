// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"context"
	"sync"
)

// Store is the transport query cache the reconciliation layer works on.
type Store interface {
	// Read returns the cached result of query for vars.
	Read(ctx context.Context, query Query, vars map[string]any) (Result, bool)

	// Write replaces the cached result of query for vars and notifies its
	// subscribers.
	Write(ctx context.Context, query Query, vars map[string]any, result Result) error

	// Evict drops the item with identity from every cached result.
	Evict(ctx context.Context, identity string)

	// Clear drops every cached result.
	Clear(ctx context.Context)

	// Subscribe streams the results written for query and vars until the
	// returned cancel function is called.
	Subscribe(query Query, vars map[string]any) (<-chan Result, func(), error)
}

type entry struct {
	query  Query
	vars   map[string]any
	result Result
}

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[int]chan Result
	nextSub int
}

// NewMemoryStore returns an empty cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		subs:    make(map[string]map[int]chan Result),
	}
}

func (m *MemoryStore) Read(_ context.Context, query Query, vars map[string]any) (Result, bool) {
	key, err := resultKey(query, vars)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.result, true
}

func (m *MemoryStore) Write(_ context.Context, query Query, vars map[string]any, result Result) error {
	key, err := resultKey(query, vars)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &entry{query: query, vars: vars, result: result}
	m.notifyLocked(key, result)
	return nil
}

func (m *MemoryStore) Evict(_ context.Context, identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		var next Result
		for field, value := range e.result {
			kept, changed := withoutIdentity(value, identity)
			if !changed {
				continue
			}
			if next == nil {
				next = e.result.clone()
			}
			next[field] = kept
		}

		if next != nil {
			e.result = next
			m.notifyLocked(key, next)
		}
	}
}

// withoutIdentity filters the item with identity out of a list value.
func withoutIdentity(value any, identity string) ([]any, bool) {
	var list []any
	switch v := value.(type) {
	case []any:
		list = v
	case []Item:
		list = make([]any, 0, len(v))
		for _, item := range v {
			list = append(list, item)
		}
	default:
		return nil, false
	}

	kept := make([]any, 0, len(list))
	for _, v := range list {
		if item, ok := v.(Item); ok {
			if id, ok := Identity(item); ok && id == identity {
				continue
			}
		}
		kept = append(kept, v)
	}
	return kept, len(kept) != len(list)
}

func (m *MemoryStore) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*entry)
}

func (m *MemoryStore) Subscribe(query Query, vars map[string]any) (<-chan Result, func(), error) {
	key, err := resultKey(query, vars)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Result, 1)
	id := m.nextSub
	m.nextSub++
	if m.subs[key] == nil {
		m.subs[key] = make(map[int]chan Result)
	}
	m.subs[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[key], id)
			if len(m.subs[key]) == 0 {
				delete(m.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Len returns the number of cached results.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Subscribers returns the number of open subscriptions.
func (m *MemoryStore) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, subs := range m.subs {
		n += len(subs)
	}
	return n
}

// notifyLocked delivers the latest result, replacing an unread one.
func (m *MemoryStore) notifyLocked(key string, result Result) {
	for _, ch := range m.subs[key] {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- result:
		default:
		}
	}
}
