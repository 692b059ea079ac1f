// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders the terminal screens of the client batch modes: the
// offline import progress and the push of terminated records.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/service"
)

type TUI struct {
	imports  service.ImportService
	rootData service.RootDataService
	options  []tea.ProgramOption
	logger   *logger.Logger
}

// New creates the terminal UI. options are passed to every program, tests
// use them to detach the terminal.
func New(services *service.Services, logger *logger.Logger, options ...tea.ProgramOption) *TUI {
	return &TUI{
		imports:  services.ImportService,
		rootData: services.RootDataService,
		options:  options,
		logger:   logger.WithComponent("tui"),
	}
}

// ImportFlow starts an offline import, or joins the one in flight, and
// shows its progress until it ends. Quitting the screen cancels nothing:
// the caller decides whether ctx ends the run.
func (t *TUI) ImportFlow(ctx context.Context, opts service.ImportOptions) error {
	run := t.imports.ExecuteImport(ctx, opts)
	t.logger.Info().Str("run", run.ID()).Int("max", run.Max()).Msg("import screen opened")

	finalModel, err := t.program(ctx, newImportModel(run)).Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(importModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		return ErrUserQuit
	}
	return result.err
}

// PushFlow synchronizes every terminated local record of typeName and shows
// the report.
func (t *TUI) PushFlow(ctx context.Context, typeName string) (service.SyncReport, error) {
	finalModel, err := t.program(ctx, newPushModel(ctx, t.rootData, typeName)).Run()
	if err != nil {
		return service.SyncReport{}, err
	}

	result, ok := finalModel.(pushModel)
	if !ok {
		return service.SyncReport{}, tea.ErrProgramKilled
	}
	if result.quitByUser {
		return result.report, ErrUserQuit
	}
	return result.report, result.err
}

func (t *TUI) program(ctx context.Context, model tea.Model) *tea.Program {
	options := append([]tea.ProgramOption{tea.WithContext(ctx)}, t.options...)
	return tea.NewProgram(model, options...)
}
