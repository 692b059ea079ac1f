// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fishobs/fieldsync/internal/service"
)

type pushModel struct {
	ctx      context.Context
	rootData service.RootDataService
	typeName string

	spinner spinner.Model

	report     service.SyncReport
	err        error
	done       bool
	quitByUser bool
}

func newPushModel(ctx context.Context, rootData service.RootDataService, typeName string) pushModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return pushModel{ctx: ctx, rootData: rootData, typeName: typeName, spinner: s}
}

func (m pushModel) push() tea.Msg {
	report, err := m.rootData.SynchronizeAll(m.ctx, m.typeName)
	return pushDoneMsg{report: report, err: err}
}

func (m pushModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.push)
}

func (m pushModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pushDoneMsg:
		m.done = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.quitByUser = !m.done
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m pushModel) View() string {
	title := "Synchronize " + m.typeName
	if !m.done {
		return renderPage(title, m.spinner.View()+" Uploading terminated records...", "q: quit")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", successStyle.Render(fmt.Sprintf("%d synchronized", len(m.report.Synchronized))))
	for _, r := range m.report.Synchronized {
		fmt.Fprintf(&b, "  %d -> %d\n", r.LocalID, r.ServerID)
	}
	if len(m.report.Failed) > 0 {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render(fmt.Sprintf("%d failed", len(m.report.Failed))))
		for _, f := range m.report.Failed {
			fmt.Fprintf(&b, "  %d: %s\n", f.ID, fitText(humanizeError(f.Err), 60))
		}
	} else if m.err != nil {
		b.WriteString(errorStyle.Render(humanizeError(m.err)))
	}

	return renderPage(title, strings.TrimRight(b.String(), "\n"), "")
}
