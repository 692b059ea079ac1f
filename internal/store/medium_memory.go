// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryMedium is an in-process [Medium]. It backs tests and the
// ":memory:" storage DSN.
type MemoryMedium struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryMedium returns an empty medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{values: make(map[string][]byte)}
}

func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryMedium) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryMedium) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Keys lists stored keys having prefix, in lexical order.
func (m *MemoryMedium) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
