// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/network"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/models"
)

// Field names of list results.
const (
	dataField  = "data"
	totalField = "total"
)

type entityService struct {
	coordinator *store.Coordinator
	remote      adapter.RemoteSource
	registry    *cache.Registry
	cache       cache.Store
	status      *network.Status
	docs        DocumentSet
	rootData    RootDataService
	logger      *logger.Logger

	mu      sync.Mutex
	editing map[models.RootEntity]struct{}
}

// NewEntityService returns an entity service. remote and status may be nil,
// every operation is then served locally.
func NewEntityService(
	coordinator *store.Coordinator,
	remote adapter.RemoteSource,
	registry *cache.Registry,
	cacheStore cache.Store,
	status *network.Status,
	docs DocumentSet,
	rootData RootDataService,
	log *logger.Logger,
) EntityService {
	return &entityService{
		coordinator: coordinator,
		remote:      remote,
		registry:    registry,
		cache:       cacheStore,
		status:      status,
		docs:        docs,
		rootData:    rootData,
		logger:      log.WithComponent("entity_service"),
		editing:     make(map[models.RootEntity]struct{}),
	}
}

func (s *entityService) offline() bool {
	return s.remote == nil || s.status == nil || !s.status.Online()
}

func (s *entityService) LoadAll(ctx context.Context, typeName string, opts models.LoadOptions) (models.Page, error) {
	if opts.Trash || s.offline() {
		page, err := s.coordinator.LoadAll(ctx, typeName, opts)
		return page, opError("load all", typeName, 0, err)
	}

	docs, err := s.docs.of(typeName, loadAllDoc)
	if err != nil {
		return models.Page{}, opError("load all", typeName, 0, err)
	}
	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return models.Page{}, opError("load all", typeName, 0, err)
	}

	result, err := s.remote.Query(ctx, docs.request(docs.LoadAll, loadVariables(opts)))
	if err != nil {
		return models.Page{}, opError("load all", typeName, 0, mapRemoteError(err))
	}
	items, err := result.Decode(kind.New)
	if err != nil {
		return models.Page{}, opError("load all", typeName, 0, fmt.Errorf("%w: %w", adapter.ErrDecodingResponse, err))
	}

	page := models.Page{Data: items, Total: len(items)}
	if result.Total != nil {
		page.Total = *result.Total
	}
	return page, nil
}

func (s *entityService) WatchAll(ctx context.Context, typeName string, opts models.LoadOptions) (<-chan models.Page, error) {
	if opts.Trash || s.offline() {
		pages, err := s.coordinator.WatchAll(ctx, typeName, opts)
		return pages, opError("watch all", typeName, 0, err)
	}

	docs, err := s.docs.of(typeName, loadAllDoc)
	if err != nil {
		return nil, opError("watch all", typeName, 0, err)
	}
	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, opError("watch all", typeName, 0, err)
	}

	req := cache.WatchRequest{
		Query:       docs.LoadAll,
		Variables:   docs.variables(loadVariables(opts)),
		ArrayField:  dataField,
		TotalField:  totalField,
		FetchPolicy: cache.CacheAndNetwork,
	}
	if opts.SortBy != "" {
		req.Sort = cache.SortComparator(opts.SortBy, opts.SortDirection == models.SortDesc)
	}

	reg, err := s.registry.Watch(ctx, req)
	if err != nil {
		return nil, opError("watch all", typeName, 0, mapRemoteError(err))
	}

	out := make(chan models.Page, 1)
	go func() {
		defer close(out)
		defer reg.Release()

		emit := func(result cache.Result) bool {
			page, err := pageFromResult(kind, result)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("func", "entityService.WatchAll").
					Str("query", req.Query.Name).
					Msg("skipping undecodable watched result")
				return true
			}
			select {
			case out <- page:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if result, ok := s.cache.Read(ctx, req.Query, req.Variables); ok && !emit(result) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case result, ok := <-reg.Updates():
				if !ok || !emit(result) {
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *entityService) Load(ctx context.Context, typeName string, id int64) (models.Entity, error) {
	if id < 0 || s.offline() {
		e, err := s.coordinator.Load(ctx, typeName, id)
		return e, opError("load", typeName, id, err)
	}

	docs, err := s.docs.of(typeName, loadDoc)
	if err != nil {
		return nil, opError("load", typeName, id, err)
	}
	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, opError("load", typeName, id, err)
	}

	result, err := s.remote.Query(ctx, docs.request(docs.Load, map[string]any{"id": id}))
	if err != nil {
		return nil, opError("load", typeName, id, mapRemoteError(err))
	}
	e, err := firstRecord(result, kind)
	if err != nil {
		return nil, opError("load", typeName, id, err)
	}
	return e, nil
}

func (s *entityService) Save(ctx context.Context, e models.Entity) (models.Entity, error) {
	typeName := e.TypeName()
	id, _ := e.EntityID()

	if models.IsLocal(e) || s.offline() {
		saved, err := s.coordinator.Save(ctx, e, store.StoreOptions{})
		return saved, opError("save", typeName, id, err)
	}

	docs, err := s.docs.of(typeName, saveDoc)
	if err != nil {
		return nil, opError("save", typeName, id, err)
	}
	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, opError("save", typeName, id, err)
	}

	result, err := s.remote.Mutate(ctx, docs.request(docs.Save, map[string]any{"data": e}))
	if err != nil {
		return nil, opError("save", typeName, id, mapRemoteError(err))
	}
	saved, err := firstRecord(result, kind)
	if err != nil {
		return nil, opError("save", typeName, id, err)
	}

	s.reconcileWatched(ctx, docs, saved, id > 0)
	return saved, nil
}

func (s *entityService) Delete(ctx context.Context, typeName string, id int64) error {
	if id < 0 || s.offline() {
		removed, err := s.coordinator.Delete(ctx, typeName, id)
		if err == nil && removed == nil {
			err = fmt.Errorf("%w: %s#%d", store.ErrEntityNotFound, typeName, id)
		}
		return opError("delete", typeName, id, err)
	}

	docs, err := s.docs.of(typeName, deleteDoc)
	if err != nil {
		return opError("delete", typeName, id, err)
	}
	if _, err = s.remote.Mutate(ctx, docs.request(docs.Delete, map[string]any{"ids": []int64{id}})); err != nil {
		return opError("delete", typeName, id, mapRemoteError(err))
	}

	s.registry.RemoveFromMutableQueries(ctx, docs.LoadAll.Name, id)
	return nil
}

func (s *entityService) MoveToTrash(ctx context.Context, typeName string, id int64) (models.Entity, error) {
	if id >= 0 {
		return nil, opError("move to trash", typeName, id, ErrNotLocal)
	}
	trashed, err := s.coordinator.MoveToTrash(ctx, typeName, id)
	return trashed, opError("move to trash", typeName, id, err)
}

func (s *entityService) BeginEdit(e models.RootEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing[e] = struct{}{}
}

func (s *entityService) EndEdit(e models.RootEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editing, e)
}

func (s *entityService) Editing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.editing)
}

// WatchNetwork marks every edited synchronized record DIRTY whenever the
// network goes offline. It returns when ctx is done.
func (s *entityService) WatchNetwork(ctx context.Context) {
	if s.status == nil {
		return
	}
	for online := range s.status.Subscribe(ctx) {
		if !online {
			s.markEditedDirty(ctx)
		}
	}
}

func (s *entityService) markEditedDirty(ctx context.Context) {
	s.mu.Lock()
	edited := make([]models.RootEntity, 0, len(s.editing))
	for e := range s.editing {
		edited = append(edited, e)
	}
	s.mu.Unlock()

	for _, e := range edited {
		if e.SynchronizationStatus() != models.SyncStatusSync {
			continue
		}
		if err := s.rootData.MarkDirty(ctx, e); err != nil {
			id, _ := e.EntityID()
			s.logger.Err(err).
				Str("func", "entityService.markEditedDirty").
				Str("type", e.TypeName()).
				Int64("id", id).
				Msg("failed to mark edited record dirty")
		}
	}
}

// reconcileWatched brings a record saved on the server into the watched
// lists of its kind. An existing record is updated in place.
func (s *entityService) reconcileWatched(ctx context.Context, docs Documents, e models.Entity, existing bool) {
	if docs.LoadAll.Name == "" {
		return
	}
	item, err := cache.ItemFromEntity(e)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("func", "entityService.reconcileWatched").
			Str("type", e.TypeName()).
			Msg("saved record not applied to watched queries")
		return
	}
	if existing {
		s.registry.UpdateMutableQueries(ctx, docs.LoadAll.Name, item)
		return
	}
	s.registry.InsertIntoMutableQueries(ctx, docs.LoadAll.Name, item)
}

// firstRecord decodes the first record of a remote result.
func firstRecord(result models.RemoteResult, kind models.Kind) (models.Entity, error) {
	items, err := result.Decode(kind.New)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", adapter.ErrDecodingResponse, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyResult
	}
	return items[0], nil
}

// pageFromResult decodes a cached list result.
func pageFromResult(kind models.Kind, result cache.Result) (models.Page, error) {
	var list []any
	switch v := result[dataField].(type) {
	case []any:
		list = v
	case []cache.Item:
		list = make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
	case nil:
	default:
		return models.Page{}, fmt.Errorf("%w: %s is %T", cache.ErrNotAnArray, dataField, v)
	}

	page := models.Page{Data: make([]models.Entity, 0, len(list)), Total: len(list)}
	for _, item := range list {
		raw, err := json.Marshal(item)
		if err != nil {
			return models.Page{}, err
		}
		e := kind.New()
		if err = json.Unmarshal(raw, e); err != nil {
			return models.Page{}, err
		}
		page.Data = append(page.Data, e)
	}

	switch total := result[totalField].(type) {
	case int:
		page.Total = total
	case int64:
		page.Total = int(total)
	case float64:
		page.Total = int(total)
	}
	return page, nil
}
