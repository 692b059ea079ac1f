// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"context"
	"slices"

	"github.com/fishobs/fieldsync/internal/logger"
)

// SizeVariable is the query variable bounding the length of a list result.
const SizeVariable = "size"

// MutationOptions locate a cached list result and describe how to keep it
// consistent.
type MutationOptions struct {
	Query     Query
	Variables map[string]any

	// ArrayField is the result field holding the items.
	ArrayField string

	// TotalField is the optional result field holding the total count.
	TotalField string

	// Sort, when set, reorders the list after an insertion.
	Sort Comparator

	// Equals detects duplicates on insertion. Defaults to [SameIdentity].
	Equals func(a, b Item) bool
}

// Mutator applies local changes to cached query results so that observers
// see them without a refetch. Every mutation is copy-on-write and
// best-effort: inconsistencies are logged and the mutation becomes a no-op.
type Mutator struct {
	store  Store
	logger *logger.Logger
}

// NewMutator returns a mutator over store.
func NewMutator(store Store, log *logger.Logger) *Mutator {
	return &Mutator{store: store, logger: log.WithComponent("cache")}
}

// InsertIntoCachedQuery inserts item into the cached result.
func (m *Mutator) InsertIntoCachedQuery(ctx context.Context, opts MutationOptions, item Item) {
	m.InsertManyIntoCachedQuery(ctx, opts, []Item{item})
}

// InsertManyIntoCachedQuery inserts the items not already present, sorts,
// truncates the list to the size variable and increments the total.
func (m *Mutator) InsertManyIntoCachedQuery(ctx context.Context, opts MutationOptions, items []Item) {
	result, list, ok := m.read(ctx, opts, "Mutator.InsertManyIntoCachedQuery")
	if !ok {
		return
	}

	equals := opts.Equals
	if equals == nil {
		equals = SameIdentity
	}

	added := 0
	for _, item := range items {
		if slices.ContainsFunc(list, func(existing Item) bool { return equals(existing, item) }) {
			continue
		}
		list = append(list, item)
		added++
	}
	if added == 0 {
		return
	}

	m.write(ctx, opts, result, list, added, "Mutator.InsertManyIntoCachedQuery")
}

// UpdateOrInsertCachedQuery replaces the item equal to item, or inserts it
// when absent.
func (m *Mutator) UpdateOrInsertCachedQuery(ctx context.Context, opts MutationOptions, item Item) {
	result, list, ok := m.read(ctx, opts, "Mutator.UpdateOrInsertCachedQuery")
	if !ok {
		return
	}

	equals := opts.Equals
	if equals == nil {
		equals = SameIdentity
	}

	added := 0
	if i := slices.IndexFunc(list, func(existing Item) bool { return equals(existing, item) }); i >= 0 {
		list[i] = item
	} else {
		list = append(list, item)
		added = 1
	}

	m.write(ctx, opts, result, list, added, "Mutator.UpdateOrInsertCachedQuery")
}

// RemoveFromCachedQueryByID splices the item with id out of the cached
// result and evicts it from the cache. The total is left unchanged.
func (m *Mutator) RemoveFromCachedQueryByID(ctx context.Context, opts MutationOptions, id int64) {
	result, list, ok := m.read(ctx, opts, "Mutator.RemoveFromCachedQueryByID")
	if !ok {
		return
	}

	var evicted []string
	list = slices.DeleteFunc(list, func(item Item) bool {
		itemID, ok := ItemID(item)
		if !ok || itemID != id {
			return false
		}
		if identity, ok := Identity(item); ok {
			evicted = append(evicted, identity)
		}
		return true
	})

	next := result.clone()
	next[opts.ArrayField] = toAnySlice(list)
	m.writeResult(ctx, opts, next, "Mutator.RemoveFromCachedQueryByID")

	for _, identity := range evicted {
		m.store.Evict(ctx, identity)
	}
}

// RemoveFromCachedQueryByIDs removes the items with ids. With a total field
// the items are spliced out and the total decremented; otherwise they are
// only evicted from the cache.
func (m *Mutator) RemoveFromCachedQueryByIDs(ctx context.Context, opts MutationOptions, ids []int64) {
	result, list, ok := m.read(ctx, opts, "Mutator.RemoveFromCachedQueryByIDs")
	if !ok {
		return
	}

	if opts.TotalField == "" {
		for _, item := range list {
			id, ok := ItemID(item)
			if !ok || !slices.Contains(ids, id) {
				continue
			}
			if identity, ok := Identity(item); ok {
				m.store.Evict(ctx, identity)
			}
		}
		return
	}

	removed := 0
	for i := len(list) - 1; i >= 0; i-- {
		id, ok := ItemID(list[i])
		if ok && slices.Contains(ids, id) {
			list = slices.Delete(list, i, i+1)
			removed++
		}
	}
	if removed == 0 {
		return
	}

	next := result.clone()
	next[opts.ArrayField] = toAnySlice(list)
	m.addToTotal(next, opts.TotalField, -removed)
	m.writeResult(ctx, opts, next, "Mutator.RemoveFromCachedQueryByIDs")
}

func (m *Mutator) read(ctx context.Context, opts MutationOptions, fn string) (Result, []Item, bool) {
	result, ok := m.store.Read(ctx, opts.Query, opts.Variables)
	if !ok {
		m.logger.Warn().
			Str("func", fn).
			Str("query", opts.Query.Name).
			Msg("query result not cached, skipping cache update")
		return nil, nil, false
	}

	list, err := result.items(opts.ArrayField)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("func", fn).
			Str("query", opts.Query.Name).
			Str("field", opts.ArrayField).
			Msg("unexpected result shape, skipping cache update")
		return nil, nil, false
	}
	return result, list, true
}

// write sorts, truncates and stores list, adding added to the total.
func (m *Mutator) write(ctx context.Context, opts MutationOptions, result Result, list []Item, added int, fn string) {
	if opts.Sort != nil {
		slices.SortStableFunc(list, (func(a, b Item) int)(opts.Sort))
	}
	if size, ok := toInt64(opts.Variables[SizeVariable]); ok && size > 0 && int64(len(list)) > size {
		list = list[:size]
	}

	next := result.clone()
	next[opts.ArrayField] = toAnySlice(list)
	if added != 0 && opts.TotalField != "" {
		m.addToTotal(next, opts.TotalField, added)
	}
	m.writeResult(ctx, opts, next, fn)
}

func (m *Mutator) addToTotal(result Result, field string, delta int) {
	total, ok := toInt64(result[field])
	if !ok {
		m.logger.Warn().
			Str("func", "Mutator.addToTotal").
			Str("field", field).
			Msg("total field missing or not numeric")
		return
	}
	result[field] = max(int(total)+delta, 0)
}

func (m *Mutator) writeResult(ctx context.Context, opts MutationOptions, result Result, fn string) {
	if err := m.store.Write(ctx, opts.Query, opts.Variables, result); err != nil {
		m.logger.Warn().
			Err(err).
			Str("func", fn).
			Str("query", opts.Query.Name).
			Msg("error writing cached query")
	}
}

func toAnySlice(items []Item) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
