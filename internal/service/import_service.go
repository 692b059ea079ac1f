// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/internal/utils"
)

// lastSyncDateKey prefixes the settings key of the last import date of a
// feature.
const lastSyncDateKey = "offline.lastSyncDate."

// Import defaults.
const (
	DefaultMaxProgression = 100
	DefaultImportFeature  = "default"
)

// ImportOptions configure an import run. Zero values select the service
// defaults.
type ImportOptions struct {
	MaxProgression int
	Feature        string
}

type importService struct {
	cache        cache.Store
	coordinator  *store.Coordinator
	settings     SettingsStorage
	referentials adapter.ReferentialSource
	jobs         []ImportJob
	defaults     ImportOptions
	ids          *utils.UUIDGenerator
	logger       *logger.Logger

	mu      sync.Mutex
	running *ImportRun
}

// NewImportService returns the import orchestrator. referentials may be
// nil when no server is configured.
func NewImportService(
	cacheStore cache.Store,
	coordinator *store.Coordinator,
	settings SettingsStorage,
	referentials adapter.ReferentialSource,
	jobs []ImportJob,
	defaults ImportOptions,
	log *logger.Logger,
) ImportService {
	if defaults.MaxProgression <= 0 {
		defaults.MaxProgression = DefaultMaxProgression
	}
	if defaults.Feature == "" {
		defaults.Feature = DefaultImportFeature
	}

	return &importService{
		cache:        cacheStore,
		coordinator:  coordinator,
		settings:     settings,
		referentials: referentials,
		jobs:         jobs,
		defaults:     defaults,
		ids:          utils.NewUUIDGenerator(),
		logger:       log.WithComponent("import_service"),
	}
}

func (s *importService) withDefaults(opts ImportOptions) ImportOptions {
	if opts.MaxProgression <= 0 {
		opts.MaxProgression = s.defaults.MaxProgression
	}
	if opts.Feature == "" {
		opts.Feature = s.defaults.Feature
	}
	return opts
}

func (s *importService) ExecuteImport(ctx context.Context, opts ImportOptions) *ImportRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running != nil {
		s.logger.Debug().
			Str("func", "importService.ExecuteImport").
			Str("run", s.running.ID()).
			Msg("joining import in flight")
		return s.running
	}

	opts = s.withDefaults(opts)
	run := newImportRun(s.ids.Generate(), opts.MaxProgression)
	s.running = run

	go s.execute(ctx, run, opts)
	return run
}

func (s *importService) Running() *ImportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// budgets splits max over n steps; the last step takes the remainder.
func budgets(max, n int) []int {
	out := make([]int, n)
	share := max / n
	for i := range out {
		out[i] = share
	}
	out[n-1] = max - share*(n-1)
	return out
}

func (s *importService) execute(ctx context.Context, run *ImportRun, opts ImportOptions) {
	log := s.logger.With().Str("run", run.ID()).Str("feature", opts.Feature).Logger()
	start := time.Now()

	err := s.steps(ctx, run, opts)

	s.mu.Lock()
	s.running = nil
	s.mu.Unlock()

	if err != nil {
		log.Err(err).
			Str("func", "importService.execute").
			Int("progress", run.Value()).
			Msg("import failed")
		run.finish(err)
		return
	}

	run.set(run.Max())
	log.Info().
		Str("func", "importService.execute").
		Dur("duration", time.Since(start)).
		Msg("import finished")
	run.finish(nil)
}

func (s *importService) steps(ctx context.Context, run *ImportRun, opts ImportOptions) error {
	shares := budgets(opts.MaxProgression, len(s.jobs)+2)
	offset := 0

	s.cache.Clear(ctx)
	offset += shares[0]
	run.set(offset)

	for i, job := range s.jobs {
		if err := ctx.Err(); err != nil {
			return &ImportError{JobIndex: i, JobName: job.Name(), Err: err}
		}

		base, budget := offset, shares[i+1]
		report := func(value int) {
			if value > budget {
				s.logger.Warn().
					Str("func", "importService.steps").
					Str("job", job.Name()).
					Int("value", value).
					Int("budget", budget).
					Msg("job reported progress over its budget")
				value = budget
			}
			run.set(base + value)
		}

		if err := job.Run(ctx, budget, report); err != nil {
			return &ImportError{JobIndex: i, JobName: job.Name(), Err: err}
		}
		offset += budget
		run.set(offset)
	}

	if err := s.coordinator.PersistAll(ctx); err != nil {
		return &ImportError{JobIndex: len(s.jobs), JobName: "persist", Err: err}
	}

	if err := s.settings.Set(ctx, lastSyncDateKey+opts.Feature, time.Now().UTC()); err != nil {
		return &ImportError{JobIndex: len(s.jobs), JobName: "persist", Err: err}
	}
	return nil
}

func (s *importService) HasOfflineData(ctx context.Context) (bool, error) {
	date, err := s.LastSyncDate(ctx)
	return date != nil, err
}

func (s *importService) LastSyncDate(ctx context.Context) (*time.Time, error) {
	var date time.Time
	found, err := s.settings.Get(ctx, lastSyncDateKey+s.defaults.Feature, &date)
	if err != nil || !found {
		return nil, err
	}
	return &date, nil
}

func (s *importService) LastUpdateDate(ctx context.Context) (*time.Time, error) {
	if s.referentials == nil {
		return nil, nil
	}
	date, err := s.referentials.LastUpdateDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading referential update date: %w", mapRemoteError(err))
	}
	return date, nil
}
