// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/models"
)

// SaveOptions tune [EntityStore.SaveAll].
type SaveOptions struct {
	// Reset replaces the whole content of the store.
	Reset bool
}

type recordStatus struct {
	index int
	dirty bool
}

// EntityStore holds the records of one entity kind: an ordered slice of
// records, an id index and the local id sequence of the kind.
//
// Mutations only touch memory; [EntityStore.Persist] writes the dirty state
// to the medium. Records returned by the store are shared with it and must
// not be mutated outside of Save.
type EntityStore struct {
	name   string
	kind   models.Kind
	medium Medium
	logger *logger.Logger

	mu       sync.RWMutex
	items    []models.Entity
	status   map[int64]*recordStatus
	sequence int64
	dirty    bool
	changed  chan struct{}
	watchers int

	// per-record layout only: full records waiting to be written and ids of
	// records whose key must be removed
	pending map[int64]models.Entity
	removed map[int64]struct{}
}

// NewEntityStore creates an empty store named name holding records of kind.
func NewEntityStore(name string, kind models.Kind, medium Medium, log *logger.Logger) *EntityStore {
	return &EntityStore{
		name:    name,
		kind:    kind,
		medium:  medium,
		logger:  log.GetChildLogger(),
		status:  make(map[int64]*recordStatus),
		changed: make(chan struct{}),
		pending: make(map[int64]models.Entity),
		removed: make(map[int64]struct{}),
	}
}

// Name returns the store name.
func (s *EntityStore) Name() string {
	return s.name
}

// NextValue allocates the next local id.
func (s *EntityStore) NextValue() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextValueLocked()
}

// NextValues allocates n local ids in decreasing order.
func (s *EntityStore) NextValues(n int) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, s.nextValueLocked())
	}
	return ids
}

// CurrentValue returns the last allocated local id, 0 on a fresh store.
func (s *EntityStore) CurrentValue() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

func (s *EntityStore) nextValueLocked() int64 {
	s.sequence--
	s.dirty = true
	return s.sequence
}

// Save inserts or overwrites e and returns it with its id assigned.
func (s *EntityStore) Save(e models.Entity) models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveLocked(e)
	s.markChangedLocked()
	return e
}

func (s *EntityStore) saveLocked(e models.Entity) {
	id, ok := e.EntityID()
	switch {
	case !ok:
		e.SetEntityID(s.nextValueLocked())
	case id < 0 && id > s.sequence && s.status[id] == nil:
		// an issued local id no record holds: reused after a delete or a reset
		newID := s.nextValueLocked()
		s.logger.Warn().
			Str("func", "EntityStore.Save").
			Str("store", s.name).
			Int64("id", id).
			Int64("new_id", newID).
			Msg("stale local id detected, reassigning")
		e.SetEntityID(newID)
	case id < s.sequence:
		s.sequence = id
	}

	id, _ = e.EntityID()
	stored := s.memoryForm(e)

	if st, exists := s.status[id]; exists {
		s.items[st.index] = stored
		st.dirty = true
	} else {
		s.items = append(s.items, stored)
		s.status[id] = &recordStatus{index: len(s.items) - 1, dirty: true}
	}

	if s.kind.Layout == models.LayoutPerRecord {
		s.pending[id] = e
		delete(s.removed, id)
	}
}

// memoryForm returns the representation kept in memory: the summary for
// per-record kinds that have one.
func (s *EntityStore) memoryForm(e models.Entity) models.Entity {
	if s.kind.Layout != models.LayoutPerRecord {
		return e
	}
	if summarizer, ok := e.(models.Summarizer); ok {
		return summarizer.Summary()
	}
	return e
}

// SaveAll saves entities. When the store is empty or opts.Reset is set the
// backing slice is replaced in one step.
func (s *EntityStore) SaveAll(entities []models.Entity, opts SaveOptions) []models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !opts.Reset && len(s.status) > 0 {
		for _, e := range entities {
			s.saveLocked(e)
		}
		s.markChangedLocked()
		return entities
	}

	s.resetLocked()

	minID := s.sequence
	for _, e := range entities {
		if id, ok := e.EntityID(); ok && id < 0 && id-1 < minID {
			minID = id - 1
		}
	}
	s.sequence = minID

	s.items = make([]models.Entity, 0, len(entities))
	for _, e := range entities {
		id, ok := e.EntityID()
		if !ok {
			id = s.nextValueLocked()
			e.SetEntityID(id)
		}
		if _, dup := s.status[id]; dup {
			s.items[s.status[id].index] = s.memoryForm(e)
		} else {
			s.items = append(s.items, s.memoryForm(e))
			s.status[id] = &recordStatus{index: len(s.items) - 1, dirty: true}
		}
		if s.kind.Layout == models.LayoutPerRecord {
			s.pending[id] = e
			delete(s.removed, id)
		}
	}

	s.markChangedLocked()
	return entities
}

// resetLocked drops every record, remembering per-record keys to remove.
func (s *EntityStore) resetLocked() {
	if s.kind.Layout == models.LayoutPerRecord {
		for id := range s.status {
			s.removed[id] = struct{}{}
		}
		s.pending = make(map[int64]models.Entity)
	}
	s.items = nil
	s.status = make(map[int64]*recordStatus)
}

// Clear removes every record. The sequence is kept.
func (s *EntityStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.markChangedLocked()
}

// Delete removes the record with id and returns it, nil when not found.
func (s *EntityStore) Delete(id int64) models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.deleteLocked(id)
	if removed != nil {
		s.markChangedLocked()
	}
	return removed
}

// DeleteMany removes the records with ids and returns the removed ones.
func (s *EntityStore) DeleteMany(ids []int64) []models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]models.Entity, 0, len(ids))
	for _, id := range ids {
		if e := s.deleteLocked(id); e != nil {
			removed = append(removed, e)
		}
	}
	if len(removed) > 0 {
		s.markChangedLocked()
	}
	return removed
}

func (s *EntityStore) deleteLocked(id int64) models.Entity {
	st, ok := s.status[id]
	if !ok {
		return nil
	}

	removed := s.items[st.index]
	if full, ok := s.pending[id]; ok {
		removed = full
	}
	s.items[st.index] = nil
	delete(s.status, id)

	if s.kind.Layout == models.LayoutPerRecord {
		delete(s.pending, id)
		s.removed[id] = struct{}{}
	}
	return removed
}

func (s *EntityStore) markChangedLocked() {
	s.dirty = true
	close(s.changed)
	s.changed = make(chan struct{})
}

// Dirty reports whether the store holds changes not yet persisted.
func (s *EntityStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of live records.
func (s *EntityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.status)
}

// idle reports whether the store can be dropped from a registry.
func (s *EntityStore) idle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.status) == 0 && s.sequence == 0 && !s.dirty && s.watchers == 0
}

// LoadAll returns one page of the records matching opts.
func (s *EntityStore) LoadAll(opts models.LoadOptions) models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadAllLocked(opts)
}

func (s *EntityStore) loadAllLocked(opts models.LoadOptions) models.Page {
	matched := make([]models.Entity, 0, len(s.status))
	for _, e := range s.items {
		if e == nil {
			continue
		}
		if opts.Filter != nil && !opts.Filter(e) {
			continue
		}
		matched = append(matched, e)
	}

	if opts.SortBy != "" {
		sortEntities(matched, opts.SortBy, opts.SortDirection)
	}

	page := models.Page{Total: len(matched), Data: []models.Entity{}}
	if opts.Size == 0 {
		return page
	}

	offset := max(opts.Offset, 0)
	if offset >= len(matched) {
		return page
	}
	end := len(matched)
	if opts.Size > 0 && offset+opts.Size < end {
		end = offset + opts.Size
	}
	page.Data = matched[offset:end]
	return page
}

// WatchAll emits the page matching opts now and after every change of the
// store, until ctx is done. Intermediate states may be skipped by slow
// readers.
func (s *EntityStore) WatchAll(ctx context.Context, opts models.LoadOptions) <-chan models.Page {
	out := make(chan models.Page, 1)

	s.mu.Lock()
	s.watchers++
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.watchers--
			s.mu.Unlock()
			close(out)
		}()

		for {
			s.mu.RLock()
			page := s.loadAllLocked(opts)
			changed := s.changed
			s.mu.RUnlock()

			select {
			case out <- page:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Load returns the full record with id. Per-record kinds are read from the
// medium when no unsaved version is held in memory.
func (s *EntityStore) Load(ctx context.Context, id int64) (models.Entity, error) {
	s.mu.RLock()
	st, ok := s.status[id]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s#%d", ErrEntityNotFound, s.name, id)
	}
	if s.kind.Layout != models.LayoutPerRecord {
		e := s.items[st.index]
		s.mu.RUnlock()
		return e, nil
	}
	if full, ok := s.pending[id]; ok {
		s.mu.RUnlock()
		return full, nil
	}
	inMemory := s.items[st.index]
	s.mu.RUnlock()

	raw, found, err := s.medium.Get(ctx, recordKey(s.name, id))
	if err != nil {
		return nil, fmt.Errorf("error loading %s#%d: %w", s.name, id, err)
	}
	if !found {
		s.logger.Warn().
			Str("func", "EntityStore.Load").
			Str("store", s.name).
			Int64("id", id).
			Msg("full record missing on medium, returning in-memory form")
		return inMemory, nil
	}

	return s.decode(raw)
}

func (s *EntityStore) decode(raw []byte) (models.Entity, error) {
	e := s.kind.New()
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodingEntity, s.name, err)
	}
	return e, nil
}

// Persist writes the dirty state to the medium and returns the number of
// live records. Nothing is written when the store is clean.
func (s *EntityStore) Persist(ctx context.Context) (int, error) {
	s.mu.Lock()
	if !s.dirty {
		n := len(s.status)
		s.mu.Unlock()
		return n, nil
	}

	s.compactLocked()
	live := append([]models.Entity(nil), s.items...)
	ids := make([]int64, 0, len(live))
	for _, e := range live {
		id, _ := e.EntityID()
		ids = append(ids, id)
	}
	sequence := s.sequence
	pending := s.pending
	removed := s.removed
	s.pending = make(map[int64]models.Entity)
	s.removed = make(map[int64]struct{})
	s.dirty = false
	for _, st := range s.status {
		st.dirty = false
	}
	s.mu.Unlock()

	var err error
	if s.kind.Layout == models.LayoutPerRecord {
		err = s.persistPerRecord(ctx, ids, pending, removed)
	} else {
		err = s.persistBlob(ctx, live)
	}
	if err == nil {
		err = s.persistSequence(ctx, sequence)
	}

	if err != nil {
		s.restoreDirtyState(pending, removed)
		return 0, err
	}

	s.logger.Debug().
		Str("func", "EntityStore.Persist").
		Str("store", s.name).
		Int("count", len(live)).
		Msg("store persisted")
	return len(live), nil
}

// compactLocked drops tombstones and renumbers the index.
func (s *EntityStore) compactLocked() {
	if len(s.items) == len(s.status) {
		return
	}

	items := make([]models.Entity, 0, len(s.status))
	for _, e := range s.items {
		if e == nil {
			continue
		}
		id, _ := e.EntityID()
		s.status[id].index = len(items)
		items = append(items, e)
	}
	s.items = items
}

func (s *EntityStore) restoreDirtyState(pending map[int64]models.Entity, removed map[int64]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	for id, e := range pending {
		if _, newer := s.pending[id]; newer {
			continue
		}
		if st, live := s.status[id]; live {
			st.dirty = true
			s.pending[id] = e
		}
	}
	for id := range removed {
		if _, live := s.status[id]; !live {
			s.removed[id] = struct{}{}
		}
	}
}

func (s *EntityStore) persistBlob(ctx context.Context, live []models.Entity) error {
	if len(live) == 0 {
		if err := s.medium.Remove(ctx, blobKey(s.name)); err != nil {
			return fmt.Errorf("error removing %s: %w", s.name, err)
		}
		return nil
	}

	payload, err := json.Marshal(live)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncodingEntity, s.name, err)
	}
	if err = s.medium.Set(ctx, blobKey(s.name), payload); err != nil {
		return fmt.Errorf("error writing %s: %w", s.name, err)
	}
	return nil
}

// persistSequence keeps the sequence of stores whose issued ids outlive
// their records, such as nested records saved inside their parent.
func (s *EntityStore) persistSequence(ctx context.Context, sequence int64) error {
	if sequence == 0 {
		return nil
	}
	if err := s.medium.Set(ctx, sequenceKey(s.name), []byte(strconv.FormatInt(sequence, 10))); err != nil {
		return fmt.Errorf("error writing %s sequence: %w", s.name, err)
	}
	return nil
}

func (s *EntityStore) restoreSequence(ctx context.Context) (int64, error) {
	raw, found, err := s.medium.Get(ctx, sequenceKey(s.name))
	if err != nil {
		return 0, fmt.Errorf("error reading %s sequence: %w", s.name, err)
	}
	if !found {
		return 0, nil
	}
	sequence, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s sequence: %w", ErrDecodingEntity, s.name, err)
	}
	return min(sequence, 0), nil
}

func (s *EntityStore) persistPerRecord(ctx context.Context, ids []int64, pending map[int64]models.Entity, removed map[int64]struct{}) error {
	for id, e := range pending {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%w: %s#%d: %w", ErrEncodingEntity, s.name, id, err)
		}
		if err = s.medium.Set(ctx, recordKey(s.name, id), payload); err != nil {
			return fmt.Errorf("error writing %s#%d: %w", s.name, id, err)
		}
	}

	if len(ids) == 0 {
		if err := s.medium.Remove(ctx, idsKey(s.name)); err != nil {
			return fmt.Errorf("error removing %s index: %w", s.name, err)
		}
	} else {
		payload, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("%w: %s index: %w", ErrEncodingEntity, s.name, err)
		}
		if err = s.medium.Set(ctx, idsKey(s.name), payload); err != nil {
			return fmt.Errorf("error writing %s index: %w", s.name, err)
		}
	}

	for id := range removed {
		if err := s.medium.Remove(ctx, recordKey(s.name, id)); err != nil {
			return fmt.Errorf("error removing %s#%d: %w", s.name, id, err)
		}
	}
	return nil
}

// Restore replaces the store content with the state found on the medium and
// returns the number of records loaded.
func (s *EntityStore) Restore(ctx context.Context) (int, error) {
	var (
		entities []models.Entity
		err      error
	)
	if s.kind.Layout == models.LayoutPerRecord {
		entities, err = s.restorePerRecord(ctx)
	} else {
		entities, err = s.restoreBlob(ctx)
	}
	if err != nil {
		return 0, err
	}
	sequence, err := s.restoreSequence(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.Entity, 0, len(entities))
	s.status = make(map[int64]*recordStatus, len(entities))
	s.pending = make(map[int64]models.Entity)
	s.removed = make(map[int64]struct{})

	var minID int64
	for _, e := range entities {
		id, ok := e.EntityID()
		if !ok {
			s.logger.Warn().
				Str("func", "EntityStore.Restore").
				Str("store", s.name).
				Msg("skipping persisted record without id")
			continue
		}
		if _, dup := s.status[id]; dup {
			continue
		}
		if id < minID {
			minID = id
		}
		s.items = append(s.items, s.memoryForm(e))
		s.status[id] = &recordStatus{index: len(s.items) - 1}
	}

	s.sequence = sequence
	if minID < 0 {
		s.sequence = min(s.sequence, minID-1)
	}
	s.dirty = false
	close(s.changed)
	s.changed = make(chan struct{})

	return len(s.items), nil
}

func (s *EntityStore) restoreBlob(ctx context.Context) ([]models.Entity, error) {
	raw, found, err := s.medium.Get(ctx, blobKey(s.name))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", s.name, err)
	}
	if !found {
		return nil, nil
	}

	var rawItems []json.RawMessage
	if err = json.Unmarshal(raw, &rawItems); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodingEntity, s.name, err)
	}

	entities := make([]models.Entity, 0, len(rawItems))
	for _, item := range rawItems {
		e, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (s *EntityStore) restorePerRecord(ctx context.Context) ([]models.Entity, error) {
	raw, found, err := s.medium.Get(ctx, idsKey(s.name))
	if err != nil {
		return nil, fmt.Errorf("error reading %s index: %w", s.name, err)
	}
	if !found {
		return nil, nil
	}

	var ids []int64
	if err = json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s index: %w", ErrDecodingEntity, s.name, err)
	}

	entities := make([]models.Entity, 0, len(ids))
	for _, id := range ids {
		rawRecord, found, err := s.medium.Get(ctx, recordKey(s.name, id))
		if err != nil {
			return nil, fmt.Errorf("error reading %s#%d: %w", s.name, id, err)
		}
		if !found {
			s.logger.Warn().
				Str("func", "EntityStore.Restore").
				Str("store", s.name).
				Int64("id", id).
				Msg("indexed record missing on medium")
			continue
		}
		e, err := s.decode(rawRecord)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
