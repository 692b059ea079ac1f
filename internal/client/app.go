// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fishobs/fieldsync/internal/adapter"
	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/handler"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/network"
	"github.com/fishobs/fieldsync/internal/server"
	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/internal/tui"
	"github.com/fishobs/fieldsync/internal/workers"
	"github.com/fishobs/fieldsync/models"
)

// pushedKinds are the root data kinds uploaded by the push mode.
var pushedKinds = []string{models.TripTypeName}

var _ Client = (*App)(nil)

// App is the field client: local storage, remote source, network watch and
// the services on top of them, run in the mode selected by configuration.
type App struct {
	cfg *config.ClientConfig

	storages *store.Storages
	services *service.Services
	status   *network.Status
	prober   *network.Prober
	server   server.Server
	ui       *tui.TUI
	workers  *workers.Workers

	logger *logger.Logger
}

// NewApp wires the client. uiOptions are passed to the terminal programs of
// the import and push modes.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger, uiOptions ...tea.ProgramOption) (*App, error) {
	kinds := models.DefaultKinds()

	storages, err := store.NewStorages(ctx, cfg.Storage, kinds, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	source, err := adapter.NewHTTPRemoteSource(cfg.Adapter, log)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create remote source: %w", err)
	}

	status := network.NewStatus(false)
	prober, err := network.NewProber(cfg.Adapter.HTTPAddress, cfg.Workers.NetworkProbeInterval, status, log)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create network prober: %w", err)
	}

	cacheStore := cache.NewMemoryStore()
	registry := cache.NewRegistry(cacheStore, adapter.NewQueryTransport(source), cache.RegistryOptions{
		Capacity: cfg.Cache.WatchQueryCapacity,
	}, log.WithComponent("watch_registry"))

	services, err := service.NewServices(storages, registry, cacheStore, service.Remote{
		Source:       source,
		Referentials: source,
		Status:       status,
	}, cfg.Import, log)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create services: %w", err)
	}

	app := &App{
		cfg:      cfg,
		storages: storages,
		services: services,
		status:   status,
		prober:   prober,
		ui:       tui.New(services, log, uiOptions...),
		logger:   log,
	}

	if cfg.App.Mode == config.ModeServe {
		handlers, err := handler.NewHandlers(services, kinds, status, storages.Coordinator, cfg.API, log)
		if err != nil {
			storages.Close()
			return nil, fmt.Errorf("create handlers: %w", err)
		}
		if app.server, err = server.NewServer(handlers, cfg.API, log); err != nil {
			storages.Close()
			return nil, fmt.Errorf("create server: %w", err)
		}
	}

	app.workers = workers.NewWorkers(log).
		Add("persistence", workers.WorkerFunc(storages.Coordinator.Run)).
		Add("network_prober", prober).
		Add("network_watcher", workers.WorkerFunc(services.EntityService.WatchNetwork))

	if app.server != nil {
		app.workers.Add("local_api", workers.WorkerFunc(func(ctx context.Context) {
			if err := app.server.RunServer(ctx); err != nil {
				log.Error().Err(err).Str("func", "App.localAPI").Msg("local API stopped")
			}
		}))
	}

	return app, nil
}

// Run executes the configured mode until it ends or the process receives a
// stop signal.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	defer a.storages.Close()

	if err := a.storages.Coordinator.Start(ctx); err != nil {
		return fmt.Errorf("restore local stores: %w", err)
	}
	if err := a.storages.Coordinator.WaitReady(ctx); err != nil {
		return fmt.Errorf("restore local stores: %w", err)
	}

	// the mode starts with a known network status
	a.prober.Probe(ctx)

	bgCtx, cancel := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	go func() {
		a.workers.Run(bgCtx)
		close(workersDone)
	}()

	err := a.runMode(ctx)

	// workers stop after the mode, the persistence worker flushes pending
	// changes on its way out
	cancel()
	<-workersDone

	a.logger.Info().Str("mode", a.cfg.App.Mode).Err(err).Msg("client stopped")
	return err
}

func (a *App) runMode(ctx context.Context) error {
	switch a.cfg.App.Mode {
	case config.ModeServe:
		<-ctx.Done()
		return nil

	case config.ModeImport:
		err := a.ui.ImportFlow(ctx, service.ImportOptions{})
		if errors.Is(err, tui.ErrUserQuit) {
			return nil
		}
		return err

	case config.ModePush:
		var errs []error
		for _, kind := range pushedKinds {
			report, err := a.ui.PushFlow(ctx, kind)
			a.logger.Info().
				Str("func", "App.runMode").
				Str("type", kind).
				Int("synchronized", len(report.Synchronized)).
				Int("failed", len(report.Failed)).
				Msg("push finished")
			if errors.Is(err, tui.ErrUserQuit) {
				return nil
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return fmt.Errorf("unknown mode %q", a.cfg.App.Mode)
}
