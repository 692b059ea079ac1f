// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/models"
)

// StoreOptions select the target store of a coordinator operation.
type StoreOptions struct {
	// EntityName overrides the store name derived from the record type.
	EntityName string

	// Reset makes SaveAll replace the whole store content.
	Reset bool
}

// CoordinatorOptions configure persistence scheduling.
type CoordinatorOptions struct {
	// PersistInterval is the period of the persistence timer.
	PersistInterval time.Duration

	// PersistThrottle is the minimal delay between two persistence passes.
	PersistThrottle time.Duration
}

// Coordinator owns every [EntityStore] of the application. It creates
// stores on demand, schedules their persistence and manages the trash
// namespace.
type Coordinator struct {
	kinds  *models.Kinds
	medium Medium
	logger *logger.Logger
	opts   CoordinatorOptions

	mu     sync.RWMutex
	stores map[string]*EntityStore
	dirty  bool

	persistMu sync.Mutex
	requests  chan struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewCoordinator creates a coordinator over medium for the registered kinds.
func NewCoordinator(kinds *models.Kinds, medium Medium, opts CoordinatorOptions, log *logger.Logger) *Coordinator {
	return &Coordinator{
		kinds:    kinds,
		medium:   medium,
		logger:   log.WithComponent("storage"),
		opts:     opts,
		stores:   make(map[string]*EntityStore),
		requests: make(chan struct{}, 1),
		ready:    make(chan struct{}),
	}
}

// Kinds returns the kind registry of the coordinator.
func (c *Coordinator) Kinds() *models.Kinds {
	return c.kinds
}

// Store returns the store named name, creating it on first use.
func (c *Coordinator) Store(name string) (*EntityStore, error) {
	if name == "" {
		return nil, ErrEntityNameRequired
	}

	c.mu.RLock()
	s, ok := c.stores[name]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	kind, err := c.kinds.Lookup(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok = c.stores[name]; ok {
		return s, nil
	}
	s = NewEntityStore(name, kind, c.medium, c.logger)
	c.stores[name] = s
	c.dirty = true
	return s, nil
}

// withStores runs fn on the stores named names while the registry holds
// them, so that a persistence pass cannot drop a store fn is writing to.
// fn must not call back into the coordinator.
func (c *Coordinator) withStores(names []string, fn func(stores []*EntityStore) error) error {
	for {
		stores := make([]*EntityStore, len(names))
		for i, name := range names {
			s, err := c.Store(name)
			if err != nil {
				return err
			}
			stores[i] = s
		}

		c.mu.RLock()
		held := true
		for i, name := range names {
			if c.stores[name] != stores[i] {
				held = false
				break
			}
		}
		if !held {
			c.mu.RUnlock()
			continue
		}
		err := fn(stores)
		c.mu.RUnlock()
		return err
	}
}

func (c *Coordinator) withStore(name string, fn func(s *EntityStore) error) error {
	return c.withStores([]string{name}, func(stores []*EntityStore) error {
		return fn(stores[0])
	})
}

func storeNameFor(e models.Entity, opts StoreOptions) string {
	if opts.EntityName == "" && e != nil {
		return e.TypeName()
	}
	return opts.EntityName
}

// Save saves e into its store.
func (c *Coordinator) Save(ctx context.Context, e models.Entity, opts StoreOptions) (models.Entity, error) {
	var saved models.Entity
	err := c.withStore(storeNameFor(e, opts), func(s *EntityStore) error {
		saved = s.Save(e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.RequestPersist()
	return saved, nil
}

// SaveAll saves entities into the store named by opts.EntityName or by the
// type of the first entity.
func (c *Coordinator) SaveAll(ctx context.Context, entities []models.Entity, opts StoreOptions) ([]models.Entity, error) {
	var first models.Entity
	if len(entities) > 0 {
		first = entities[0]
	}
	var saved []models.Entity
	err := c.withStore(storeNameFor(first, opts), func(s *EntityStore) error {
		saved = s.SaveAll(entities, SaveOptions{Reset: opts.Reset})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.RequestPersist()
	return saved, nil
}

// Delete removes a record and returns it, nil when not found.
func (c *Coordinator) Delete(ctx context.Context, name string, id int64) (models.Entity, error) {
	var removed models.Entity
	err := c.withStore(name, func(s *EntityStore) error {
		removed = s.Delete(id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed != nil {
		c.RequestPersist()
	}
	return removed, nil
}

// DeleteMany removes records and returns the removed ones.
func (c *Coordinator) DeleteMany(ctx context.Context, name string, ids []int64) ([]models.Entity, error) {
	var removed []models.Entity
	err := c.withStore(name, func(s *EntityStore) error {
		removed = s.DeleteMany(ids)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(removed) > 0 {
		c.RequestPersist()
	}
	return removed, nil
}

// MoveToTrash moves the record with id from its store to the trash store
// of the kind, where it gets a fresh local id. The two steps are not
// atomic.
func (c *Coordinator) MoveToTrash(ctx context.Context, name string, id int64) (models.Entity, error) {
	var trashed models.Entity
	err := c.withStores([]string{name, models.TrashName(name)}, func(stores []*EntityStore) error {
		origin, trash := stores[0], stores[1]

		e, err := origin.Load(ctx, id)
		if err != nil {
			return err
		}

		copied, err := cloneEntity(origin.kind, e)
		if err != nil {
			return err
		}
		copied.ClearEntityID()

		trashed = trash.Save(copied)
		trashID, _ := trashed.EntityID()
		c.logger.Debug().
			Str("func", "Coordinator.MoveToTrash").
			Str("store", trash.Name()).
			Int64("id", trashID).
			Msg("record saved into trash")

		origin.Delete(id)
		c.logger.Debug().
			Str("func", "Coordinator.MoveToTrash").
			Str("store", name).
			Int64("id", id).
			Msg("record deleted from origin store")
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.RequestPersist()
	return trashed, nil
}

// MoveManyToTrash moves several records to trash. It stops at the first
// failure; records moved before it stay in trash.
func (c *Coordinator) MoveManyToTrash(ctx context.Context, name string, ids []int64) ([]models.Entity, error) {
	trashed := make([]models.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := c.MoveToTrash(ctx, name, id)
		if err != nil {
			return trashed, fmt.Errorf("error moving %s#%d to trash: %w", name, id, err)
		}
		trashed = append(trashed, e)
	}
	return trashed, nil
}

// DeleteFromTrash removes records from the trash store of name.
func (c *Coordinator) DeleteFromTrash(ctx context.Context, name string, ids []int64) ([]models.Entity, error) {
	return c.DeleteMany(ctx, models.TrashName(name), ids)
}

// ClearTrash empties the trash store of name.
func (c *Coordinator) ClearTrash(ctx context.Context, name string) error {
	err := c.withStore(models.TrashName(name), func(trash *EntityStore) error {
		trash.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	c.RequestPersist()
	return nil
}

// Load returns the full record with id.
func (c *Coordinator) Load(ctx context.Context, name string, id int64) (models.Entity, error) {
	s, err := c.Store(name)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

// LoadAll returns one page of the store. opts.Trash reads the trash store.
func (c *Coordinator) LoadAll(ctx context.Context, name string, opts models.LoadOptions) (models.Page, error) {
	s, err := c.Store(storeName(name, opts))
	if err != nil {
		return models.Page{}, err
	}
	return s.LoadAll(opts), nil
}

// WatchAll streams pages of the store until ctx is done.
func (c *Coordinator) WatchAll(ctx context.Context, name string, opts models.LoadOptions) (<-chan models.Page, error) {
	var pages <-chan models.Page
	err := c.withStore(storeName(name, opts), func(s *EntityStore) error {
		pages = s.WatchAll(ctx, opts)
		return nil
	})
	return pages, err
}

func storeName(name string, opts models.LoadOptions) string {
	if opts.Trash {
		return models.TrashName(name)
	}
	return name
}

// NextValue allocates a local id in the store of name.
func (c *Coordinator) NextValue(name string) (int64, error) {
	var id int64
	err := c.withStore(name, func(s *EntityStore) error {
		id = s.NextValue()
		return nil
	})
	return id, err
}

// NextValues allocates n local ids in the store of name.
func (c *Coordinator) NextValues(name string, n int) ([]int64, error) {
	var ids []int64
	err := c.withStore(name, func(s *EntityStore) error {
		ids = s.NextValues(n)
		return nil
	})
	return ids, err
}

// CurrentValue returns the sequence value of the store of name.
func (c *Coordinator) CurrentValue(name string) (int64, error) {
	s, err := c.Store(name)
	if err != nil {
		return 0, err
	}
	return s.CurrentValue(), nil
}

// Dirty reports whether any store or the store index has unsaved changes.
func (c *Coordinator) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dirty {
		return true
	}
	for _, s := range c.stores {
		if s.Dirty() {
			return true
		}
	}
	return false
}

// RequestPersist asks the persistence loop for a pass. Requests coalesce.
func (c *Coordinator) RequestPersist() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// Run is the persistence loop: it performs a pass when requested or when
// the timer finds dirty stores, at most once per PersistThrottle. A final
// pass is made when ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PersistInterval)
	defer ticker.Stop()

	var (
		throttled <-chan time.Time
		pending   bool
	)

	for {
		select {
		case <-ctx.Done():
			if err := c.PersistAll(context.WithoutCancel(ctx)); err != nil {
				c.logger.Err(err).Str("func", "Coordinator.Run").Msg("final persistence pass failed")
			}
			return
		case <-c.requests:
			pending = true
		case <-ticker.C:
			pending = pending || c.Dirty()
		case <-throttled:
			throttled = nil
		}

		if !pending || throttled != nil {
			continue
		}

		pending = false
		if err := c.PersistAll(ctx); err != nil {
			c.logger.Err(err).Str("func", "Coordinator.Run").Msg("persistence pass failed")
		}
		throttled = time.After(c.opts.PersistThrottle)
	}
}

// PersistAll persists every store sequentially, then the store index.
// A failing store does not stop the pass; the joined error is returned.
func (c *Coordinator) PersistAll(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	// stores created after this snapshot set the flag again for the next pass
	c.mu.Lock()
	names := make([]string, 0, len(c.stores))
	for name := range c.stores {
		names = append(names, name)
	}
	indexDirty := c.dirty
	c.dirty = false
	c.mu.Unlock()
	sort.Strings(names)

	var (
		errs         []error
		indexChanged bool
	)
	persisted := make([]string, 0, len(names))
	for _, name := range names {
		c.mu.RLock()
		s := c.stores[name]
		c.mu.RUnlock()

		n, err := s.Persist(ctx)
		if err != nil {
			c.logger.Err(err).
				Str("func", "Coordinator.PersistAll").
				Str("store", name).
				Msg("error persisting store")
			errs = append(errs, fmt.Errorf("store %s: %w", name, err))
			persisted = append(persisted, name)
			continue
		}

		if n > 0 {
			persisted = append(persisted, name)
			continue
		}

		// a store that never issued an id and holds nothing is recreated
		// identical on demand
		c.mu.Lock()
		if s.idle() {
			delete(c.stores, name)
			indexChanged = true
		} else {
			persisted = append(persisted, name)
		}
		c.mu.Unlock()
	}

	if indexChanged || indexDirty {
		if err := c.persistIndex(ctx, persisted); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Coordinator) persistIndex(ctx context.Context, names []string) error {
	payload, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("%w: store index: %w", ErrEncodingEntity, err)
	}

	if err = c.medium.Set(ctx, storeIndexKey, payload); err != nil {
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
		c.logger.Err(err).Str("func", "Coordinator.persistIndex").Msg("error writing store index")
		return fmt.Errorf("error writing store index: %w", err)
	}
	return nil
}

// Start restores every store listed in the persisted index in parallel and
// then marks the coordinator ready.
func (c *Coordinator) Start(ctx context.Context) error {
	raw, found, err := c.medium.Get(ctx, storeIndexKey)
	if err != nil {
		return fmt.Errorf("error reading store index: %w", err)
	}

	var names []string
	if found {
		if err = json.Unmarshal(raw, &names); err != nil {
			return fmt.Errorf("%w: store index: %w", ErrDecodingEntity, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		s, err := c.Store(name)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("func", "Coordinator.Start").
				Str("store", name).
				Msg("skipping persisted store of unknown kind")
			continue
		}

		g.Go(func() error {
			n, err := s.Restore(gctx)
			if err != nil {
				c.logger.Err(err).
					Str("func", "Coordinator.Start").
					Str("store", name).
					Msg("error restoring store")
				return fmt.Errorf("store %s: %w", name, err)
			}
			c.logger.Debug().
				Str("func", "Coordinator.Start").
				Str("store", name).
				Int("count", n).
				Msg("store restored")
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Info().
		Str("func", "Coordinator.Start").
		Int("stores", len(names)).
		Msg("storage ready")
	return nil
}

// Ready is closed once Start has restored the persisted stores.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// WaitReady blocks until the coordinator is ready or ctx is done.
func (c *Coordinator) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotStarted, ctx.Err())
	}
}

func cloneEntity(kind models.Kind, e models.Entity) (models.Entity, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingEntity, err)
	}

	copied := kind.New()
	if err = json.Unmarshal(payload, copied); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingEntity, err)
	}
	return copied, nil
}
