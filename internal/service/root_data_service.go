// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/network"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/models"
)

// SyncedRecord pairs the local id of a pushed record with its server id.
type SyncedRecord struct {
	LocalID  int64 `json:"localId"`
	ServerID int64 `json:"serverId"`
}

// FailedRecord is a record a push pass could not synchronize.
type FailedRecord struct {
	ID  int64 `json:"id"`
	Err error `json:"-"`
}

// SyncReport is the outcome of a push pass.
type SyncReport struct {
	Synchronized []SyncedRecord `json:"synchronized"`
	Failed       []FailedRecord `json:"failed"`
}

// statusHolder is implemented by root data records and by their summaries.
type statusHolder interface {
	SynchronizationStatus() models.SyncStatus
}

type rootDataService struct {
	coordinator *store.Coordinator
	remote      adapter.RemoteSource
	registry    *cache.Registry
	status      *network.Status
	docs        DocumentSet
	logger      *logger.Logger
}

// NewRootDataService returns the push service of root data records.
func NewRootDataService(
	coordinator *store.Coordinator,
	remote adapter.RemoteSource,
	registry *cache.Registry,
	status *network.Status,
	docs DocumentSet,
	log *logger.Logger,
) RootDataService {
	return &rootDataService{
		coordinator: coordinator,
		remote:      remote,
		registry:    registry,
		status:      status,
		docs:        docs,
		logger:      log.WithComponent("root_data_service"),
	}
}

func (s *rootDataService) online() bool {
	return s.remote != nil && s.status != nil && s.status.Online()
}

func (s *rootDataService) Terminate(ctx context.Context, e models.RootEntity) (models.RootEntity, error) {
	typeName := e.TypeName()
	id, hasID := e.EntityID()

	if !hasID || id < 0 {
		terminated, err := s.terminateLocally(ctx, e)
		return terminated, opError("terminate", typeName, id, err)
	}

	if !s.online() {
		return nil, opError("terminate", typeName, id, ErrOffline)
	}
	docs, err := s.docs.of(typeName, terminateDoc)
	if err != nil {
		return nil, opError("terminate", typeName, id, err)
	}

	result, err := s.remote.Mutate(ctx, docs.request(docs.Terminate, map[string]any{"ids": []int64{id}}))
	if err != nil {
		return nil, opError("terminate", typeName, id, mapRemoteError(err))
	}
	if len(result.Data) == 0 {
		return e, nil
	}

	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, opError("terminate", typeName, id, err)
	}
	saved, err := firstRecord(result, kind)
	if err != nil {
		return nil, opError("terminate", typeName, id, err)
	}
	root, ok := saved.(models.RootEntity)
	if !ok {
		return nil, opError("terminate", typeName, id, ErrNotRootEntity)
	}
	return root, nil
}

func (s *rootDataService) terminateLocally(ctx context.Context, e models.RootEntity) (models.RootEntity, error) {
	for _, child := range e.Children() {
		if _, ok := child.EntityID(); ok {
			continue
		}
		childID, err := s.coordinator.NextValue(child.TypeName())
		if err != nil {
			return nil, fmt.Errorf("error allocating %s id: %w", child.TypeName(), err)
		}
		child.SetEntityID(childID)
	}

	e.SetSynchronizationStatus(models.SyncStatusReadyToSync)
	saved, err := s.coordinator.Save(ctx, e, store.StoreOptions{})
	if err != nil {
		return nil, err
	}
	return saved.(models.RootEntity), nil
}

func (s *rootDataService) Synchronize(ctx context.Context, e models.RootEntity) (models.RootEntity, error) {
	typeName := e.TypeName()
	localID, hasID := e.EntityID()

	switch {
	case hasID && localID >= 0:
		return e, nil
	case !hasID:
		return nil, opError("synchronize", typeName, 0, ErrNotLocal)
	case e.SynchronizationStatus() != models.SyncStatusReadyToSync:
		return nil, opError("synchronize", typeName, localID, ErrNotReadyToSync)
	case !s.online():
		return nil, opError("synchronize", typeName, localID, ErrOffline)
	}

	docs, err := s.docs.of(typeName, saveDoc)
	if err != nil {
		return nil, opError("synchronize", typeName, localID, err)
	}
	kind, err := s.coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, opError("synchronize", typeName, localID, err)
	}

	payload, err := uploadPayload(kind, e)
	if err != nil {
		return nil, opError("synchronize", typeName, localID, err)
	}

	result, err := s.remote.Mutate(ctx, docs.request(docs.Save, map[string]any{"data": payload}))
	if err != nil {
		return nil, opError("synchronize", typeName, localID, mapRemoteError(err))
	}
	saved, err := firstRecord(result, kind)
	if err != nil {
		return nil, opError("synchronize", typeName, localID, err)
	}
	root, ok := saved.(models.RootEntity)
	if !ok {
		return nil, opError("synchronize", typeName, localID, ErrNotRootEntity)
	}
	if !models.IsRemote(root) {
		return nil, opError("synchronize", typeName, localID, ErrInvalidServerID)
	}
	root.SetSynchronizationStatus(models.SyncStatusSync)

	removed, err := s.coordinator.Delete(ctx, typeName, localID)
	if err != nil {
		return nil, opError("synchronize", typeName, localID, err)
	}
	serverID, _ := root.EntityID()
	if removed == nil {
		s.logger.Warn().
			Str("func", "rootDataService.Synchronize").
			Str("type", typeName).
			Int64("id", localID).
			Msg("local record already gone after upload")
	}
	s.logger.Info().
		Str("func", "rootDataService.Synchronize").
		Str("type", typeName).
		Int64("local_id", localID).
		Int64("server_id", serverID).
		Msg("record synchronized")

	s.fanOut(ctx, docs, localID, root)
	return root, nil
}

// uploadPayload copies e without its local ids.
func uploadPayload(kind models.Kind, e models.RootEntity) (models.RootEntity, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrEncodingEntity, err)
	}
	copied, ok := kind.New().(models.RootEntity)
	if !ok {
		return nil, ErrNotRootEntity
	}
	if err = json.Unmarshal(raw, copied); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrDecodingEntity, err)
	}

	copied.ClearEntityID()
	for _, child := range copied.Children() {
		if models.IsLocal(child) {
			child.ClearEntityID()
		}
	}
	return copied, nil
}

func (s *rootDataService) fanOut(ctx context.Context, docs Documents, localID int64, saved models.Entity) {
	if s.registry == nil || docs.LoadAll.Name == "" {
		return
	}
	s.registry.RemoveFromMutableQueries(ctx, docs.LoadAll.Name, localID)

	item, err := cache.ItemFromEntity(saved)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("func", "rootDataService.fanOut").
			Str("type", saved.TypeName()).
			Msg("synchronized record not inserted into watched queries")
		return
	}
	s.registry.InsertIntoMutableQueries(ctx, docs.LoadAll.Name, item)
}

func (s *rootDataService) SynchronizeByID(ctx context.Context, typeName string, id int64) (models.RootEntity, error) {
	if id >= 0 {
		return nil, nil
	}

	e, err := s.coordinator.Load(ctx, typeName, id)
	if err != nil {
		return nil, opError("synchronize", typeName, id, err)
	}
	root, ok := e.(models.RootEntity)
	if !ok {
		return nil, opError("synchronize", typeName, id, ErrNotRootEntity)
	}
	return s.Synchronize(ctx, root)
}

func (s *rootDataService) SynchronizeAll(ctx context.Context, typeName string) (SyncReport, error) {
	page, err := s.coordinator.LoadAll(ctx, typeName, models.LoadOptions{
		Size: -1,
		Filter: func(e models.Entity) bool {
			holder, ok := e.(statusHolder)
			return ok && models.IsLocal(e) && holder.SynchronizationStatus() == models.SyncStatusReadyToSync
		},
	})
	if err != nil {
		return SyncReport{}, opError("synchronize all", typeName, 0, err)
	}

	report := SyncReport{
		Synchronized: make([]SyncedRecord, 0, page.Total),
		Failed:       make([]FailedRecord, 0),
	}
	var errs []error
	for _, localID := range page.IDs() {
		if err = ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		saved, err := s.SynchronizeByID(ctx, typeName, localID)
		if err != nil {
			report.Failed = append(report.Failed, FailedRecord{ID: localID, Err: err})
			errs = append(errs, err)
			continue
		}
		serverID, _ := saved.EntityID()
		report.Synchronized = append(report.Synchronized, SyncedRecord{LocalID: localID, ServerID: serverID})
	}

	s.logger.Info().
		Str("func", "rootDataService.SynchronizeAll").
		Str("type", typeName).
		Int("synchronized", len(report.Synchronized)).
		Int("failed", len(report.Failed)).
		Msg("push pass finished")

	return report, errors.Join(errs...)
}

func (s *rootDataService) MarkDirty(ctx context.Context, e models.RootEntity) error {
	if e.SynchronizationStatus() != models.SyncStatusSync {
		return nil
	}
	id, _ := e.EntityID()

	e.SetSynchronizationStatus(models.SyncStatusDirty)
	_, err := s.coordinator.Save(ctx, e, store.StoreOptions{})
	return opError("mark dirty", e.TypeName(), id, err)
}
