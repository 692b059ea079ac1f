// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fishobs/fieldsync/internal/logger"
)

// Watch registry capacities.
const (
	DefaultCapacity = 3
	Unbounded       = -1
)

// FetchPolicy selects how a watch obtains its first result.
type FetchPolicy int

const (
	// CacheFirst fetches only when the result is not cached.
	CacheFirst FetchPolicy = iota
	// CacheAndNetwork serves the cache and refreshes from the network.
	CacheAndNetwork
	// NetworkOnly always fetches.
	NetworkOnly
	// CacheOnly never fetches.
	CacheOnly
)

func (p FetchPolicy) refetches() bool {
	return p == NetworkOnly || p == CacheAndNetwork
}

// WatchRequest describes a watched list query.
type WatchRequest struct {
	Query     Query
	Variables map[string]any

	// ArrayField is the result field holding the items.
	ArrayField string

	// TotalField is the optional result field holding the total count.
	TotalField string

	// InsertFilter selects which inserted items belong to this query.
	// Nil accepts every item.
	InsertFilter func(Item) bool

	// Sort keeps the list ordered after insertions.
	Sort Comparator

	FetchPolicy FetchPolicy
}

// Registration is a deduplicated watch of one query. It is shared by every
// caller that watched the same query shape, array field and variables.
type Registration struct {
	key      string
	req      WatchRequest
	registry *Registry
	refs     int
	updates  <-chan Result
	cancel   func()
}

// Key returns the composite registration key.
func (r *Registration) Key() string {
	return r.key
}

// Refs returns the number of holders.
func (r *Registration) Refs() int {
	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()
	return r.refs
}

// Updates streams the results written for the watched query. The channel
// is closed when the registration ends.
func (r *Registration) Updates() <-chan Result {
	return r.updates
}

// Release drops one holder. The last release closes the subscription and
// unregisters the watch.
func (r *Registration) Release() {
	r.registry.release(r)
}

// RegistryOptions configure a [Registry].
type RegistryOptions struct {
	// Capacity bounds the number of registrations. Zero selects
	// DefaultCapacity, Unbounded disables the bound.
	Capacity int
}

// Registry deduplicates watch registrations and fans local changes out to
// every registration of a query.
type Registry struct {
	store     Store
	transport Transport
	mutator   *Mutator
	capacity  int
	logger    *logger.Logger

	mu    sync.Mutex
	regs  map[string]*Registration
	order []string
}

// NewRegistry creates a registry over store. transport may be nil when no
// network is available; watches are then served from the cache only.
func NewRegistry(store Store, transport Transport, opts RegistryOptions, log *logger.Logger) *Registry {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	return &Registry{
		store:     store,
		transport: transport,
		mutator:   NewMutator(store, log),
		capacity:  capacity,
		logger:    log.WithComponent("watch_registry"),
		regs:      make(map[string]*Registration),
	}
}

// Mutator returns the mutator over the registry cache.
func (r *Registry) Mutator() *Mutator {
	return r.mutator
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Watch registers req or joins the existing registration with the same key.
// Joining a refetching watch refreshes the result with the stored variables.
func (r *Registry) Watch(ctx context.Context, req WatchRequest) (*Registration, error) {
	key, err := registrationKey(req.Query, req.ArrayField, req.Variables)
	if err != nil {
		return nil, err
	}

	if reg := r.join(key); reg != nil {
		if reg.req.FetchPolicy.refetches() {
			if err := r.fetch(ctx, reg.req); err != nil {
				r.logger.Warn().
					Err(err).
					Str("func", "Registry.Watch").
					Str("query", req.Query.Name).
					Msg("refetch of joined watch failed")
			}
		}
		return reg, nil
	}

	if err = r.initialFetch(ctx, req); err != nil {
		return nil, err
	}

	updates, cancel, err := r.store.Subscribe(req.Query, req.Variables)
	if err != nil {
		return nil, fmt.Errorf("error subscribing to %s: %w", req.Query.Name, err)
	}

	r.mu.Lock()
	if reg, ok := r.regs[key]; ok {
		reg.refs++
		r.mu.Unlock()
		cancel()
		return reg, nil
	}

	var evicted *Registration
	if r.capacity > 0 && len(r.regs) >= r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		evicted = r.regs[oldest]
		delete(r.regs, oldest)
	}

	reg := &Registration{
		key:      key,
		req:      req,
		registry: r,
		refs:     1,
		updates:  updates,
		cancel:   cancel,
	}
	r.regs[key] = reg
	r.order = append(r.order, key)
	r.mu.Unlock()

	if evicted != nil {
		r.logger.Warn().
			Str("func", "Registry.Watch").
			Str("evicted_query", evicted.req.Query.Name).
			Int("capacity", r.capacity).
			Msg("watch registry full, evicting oldest registration")
		evicted.cancel()
	}

	return reg, nil
}

func (r *Registry) join(key string) *Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[key]
	if !ok {
		return nil
	}
	reg.refs++
	return reg
}

func (r *Registry) release(reg *Registration) {
	r.mu.Lock()
	reg.refs--
	if reg.refs > 0 {
		r.mu.Unlock()
		return
	}
	if current, ok := r.regs[reg.key]; ok && current == reg {
		delete(r.regs, reg.key)
		r.order = slices.DeleteFunc(r.order, func(k string) bool { return k == reg.key })
	}
	r.mu.Unlock()

	reg.cancel()
}

func (r *Registry) initialFetch(ctx context.Context, req WatchRequest) error {
	switch req.FetchPolicy {
	case CacheOnly:
		return nil
	case CacheFirst:
		if _, ok := r.store.Read(ctx, req.Query, req.Variables); ok {
			return nil
		}
	}
	return r.fetch(ctx, req)
}

func (r *Registry) fetch(ctx context.Context, req WatchRequest) error {
	if r.transport == nil {
		return nil
	}

	result, err := r.transport.Fetch(ctx, req.Query, req.Variables)
	if err != nil {
		return fmt.Errorf("error fetching %s: %w", req.Query.Name, err)
	}
	return r.store.Write(ctx, req.Query, req.Variables, result)
}

func (r *Registry) registrationsOf(queryName string) []*Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := make([]*Registration, 0, len(r.order))
	for _, key := range r.order {
		if reg := r.regs[key]; reg.req.Query.Name == queryName {
			regs = append(regs, reg)
		}
	}
	return regs
}

// InsertIntoMutableQueries inserts items into every watched result of
// queryName, honouring each registration's filter and sort.
func (r *Registry) InsertIntoMutableQueries(ctx context.Context, queryName string, items ...Item) {
	for _, reg := range r.registrationsOf(queryName) {
		accepted := items
		if reg.req.InsertFilter != nil {
			accepted = slices.DeleteFunc(slices.Clone(items), func(item Item) bool {
				return !reg.req.InsertFilter(item)
			})
		}
		if len(accepted) == 0 {
			continue
		}
		r.mutator.InsertManyIntoCachedQuery(ctx, reg.mutationOptions(), accepted)
	}
}

// UpdateMutableQueries replaces items in every watched result of queryName,
// inserting them where absent. An item the filter of a registration rejects
// is removed from its result instead.
func (r *Registry) UpdateMutableQueries(ctx context.Context, queryName string, items ...Item) {
	for _, reg := range r.registrationsOf(queryName) {
		opts := reg.mutationOptions()
		var rejected []int64
		for _, item := range items {
			if reg.req.InsertFilter == nil || reg.req.InsertFilter(item) {
				r.mutator.UpdateOrInsertCachedQuery(ctx, opts, item)
				continue
			}
			if id, ok := ItemID(item); ok {
				rejected = append(rejected, id)
			}
		}
		if len(rejected) > 0 {
			r.mutator.RemoveFromCachedQueryByIDs(ctx, opts, rejected)
		}
	}
}

// RemoveFromMutableQueries removes the items with ids from every watched
// result of queryName.
func (r *Registry) RemoveFromMutableQueries(ctx context.Context, queryName string, ids ...int64) {
	for _, reg := range r.registrationsOf(queryName) {
		r.mutator.RemoveFromCachedQueryByIDs(ctx, reg.mutationOptions(), ids)
	}
}

func (r *Registration) mutationOptions() MutationOptions {
	return MutationOptions{
		Query:      r.req.Query,
		Variables:  r.req.Variables,
		ArrayField: r.req.ArrayField,
		TotalField: r.req.TotalField,
		Sort:       r.req.Sort,
	}
}
