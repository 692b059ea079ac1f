// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/models"
)

// DefaultImportPageSize is the page size of entity import jobs.
const DefaultImportPageSize = 1000

// EntityImportJob pulls every record of one kind from the server and
// replaces the local store of the kind with them.
type EntityImportJob struct {
	typeName    string
	docs        Documents
	kind        models.Kind
	remote      adapter.RemoteSource
	coordinator *store.Coordinator
	pageSize    int
	logger      *logger.Logger
}

// NewEntityImportJob returns the import job of typeName.
func NewEntityImportJob(
	typeName string,
	docs DocumentSet,
	remote adapter.RemoteSource,
	coordinator *store.Coordinator,
	pageSize int,
	log *logger.Logger,
) (*EntityImportJob, error) {
	d, err := docs.of(typeName, loadAllDoc)
	if err != nil {
		return nil, err
	}
	kind, err := coordinator.Kinds().Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultImportPageSize
	}

	return &EntityImportJob{
		typeName:    typeName,
		docs:        d,
		kind:        kind,
		remote:      remote,
		coordinator: coordinator,
		pageSize:    pageSize,
		logger:      log.WithComponent("import_job"),
	}, nil
}

// Name implements ImportJob.
func (j *EntityImportJob) Name() string {
	return "import " + j.typeName
}

// Run implements ImportJob. Progress follows the fetched share of the
// server total; the local save takes the end of the budget.
func (j *EntityImportJob) Run(ctx context.Context, budget int, report func(int)) error {
	var (
		fetched []models.Entity
		total   = -1
	)

	for offset := 0; ; offset += j.pageSize {
		result, err := j.remote.Query(ctx, j.docs.request(j.docs.LoadAll, map[string]any{
			"offset":        offset,
			"size":          j.pageSize,
			"sortBy":        "id",
			"sortDirection": string(models.SortAsc),
		}))
		if err != nil {
			return fmt.Errorf("error fetching %s page at %d: %w", j.typeName, offset, mapRemoteError(err))
		}

		items, err := result.Decode(j.kind.New)
		if err != nil {
			return fmt.Errorf("%w: %s page at %d: %w", adapter.ErrDecodingResponse, j.typeName, offset, err)
		}
		fetched = append(fetched, items...)
		if result.Total != nil {
			total = *result.Total
		}

		if total > 0 {
			report(budget * min(len(fetched), total) / total * 9 / 10)
		}
		if len(items) < j.pageSize || (total >= 0 && len(fetched) >= total) {
			break
		}
	}

	if _, err := j.coordinator.SaveAll(ctx, fetched, store.StoreOptions{EntityName: j.typeName, Reset: true}); err != nil {
		return fmt.Errorf("error saving imported %s: %w", j.typeName, err)
	}

	j.logger.Info().
		Str("func", "EntityImportJob.Run").
		Str("type", j.typeName).
		Int("count", len(fetched)).
		Msg("kind imported")
	report(budget)
	return nil
}

// ImportedKinds are the kinds pulled by a default import, reference data
// first.
var ImportedKinds = []string{
	models.LocationTypeName,
	models.GearTypeName,
	models.TaxonTypeName,
	models.ProgramTypeName,
	models.PersonTypeName,
	models.VesselTypeName,
}

// NewEntityImportJobs returns one import job per kind.
func NewEntityImportJobs(
	kinds []string,
	docs DocumentSet,
	remote adapter.RemoteSource,
	coordinator *store.Coordinator,
	pageSize int,
	log *logger.Logger,
) ([]ImportJob, error) {
	jobs := make([]ImportJob, 0, len(kinds))
	for _, typeName := range kinds {
		job, err := NewEntityImportJob(typeName, docs, remote, coordinator, pageSize, log)
		if err != nil {
			return nil, fmt.Errorf("error creating import job of %s: %w", typeName, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
