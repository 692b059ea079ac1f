// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/network"
	"github.com/fishobs/fieldsync/internal/store"
)

// Services groups the services exposed to the UI.
type Services struct {
	EntityService   EntityService
	RootDataService RootDataService
	ImportService   ImportService
}

// Remote groups the server side dependencies of the services. Source and
// Referentials are nil when no server is configured.
type Remote struct {
	Source       adapter.RemoteSource
	Referentials adapter.ReferentialSource
	Status       *network.Status
}

// NewServices wires the services over the storage layer, the watch registry
// and the remote source.
func NewServices(
	storages *store.Storages,
	registry *cache.Registry,
	cacheStore cache.Store,
	remote Remote,
	cfg config.ClientImport,
	log *logger.Logger,
) (*Services, error) {
	docs := DefaultDocuments()

	rootData := NewRootDataService(storages.Coordinator, remote.Source, registry, remote.Status, docs, log)
	entities := NewEntityService(storages.Coordinator, remote.Source, registry, cacheStore, remote.Status, docs, rootData, log)

	var jobs []ImportJob
	if remote.Source != nil {
		var err error
		jobs, err = NewEntityImportJobs(ImportedKinds, docs, remote.Source, storages.Coordinator, cfg.PageSize, log)
		if err != nil {
			return nil, fmt.Errorf("error creating import jobs: %w", err)
		}
	}

	imports := NewImportService(cacheStore, storages.Coordinator, storages.Settings, remote.Referentials, jobs, ImportOptions{
		MaxProgression: cfg.MaxProgression,
		Feature:        cfg.Feature,
	}, log)

	return &Services{
		EntityService:   entities,
		RootDataService: rootData,
		ImportService:   imports,
	}, nil
}
