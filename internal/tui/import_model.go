// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fishobs/fieldsync/internal/service"
)

const maxBarWidth = 60

type importModel struct {
	run     *service.ImportRun
	updates <-chan int

	bar     progress.Model
	spinner spinner.Model

	value      int
	done       bool
	err        error
	quitByUser bool
}

func newImportModel(run *service.ImportRun) importModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return importModel{
		run:     run,
		updates: run.Subscribe(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		spinner: s,
	}
}

// waitForProgress reads the next progress value. A closed channel means the
// run ended.
func waitForProgress(updates <-chan int) tea.Cmd {
	return func() tea.Msg {
		value, ok := <-updates
		if !ok {
			return importDoneMsg{}
		}
		return progressMsg{value: value}
	}
}

func (m importModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.updates))
}

func (m importModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.value = msg.value
		return m, waitForProgress(m.updates)

	case importDoneMsg:
		m.done = true
		m.value = m.run.Value()
		m.err = m.run.Err()
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.quitByUser = true
			return m, tea.Quit
		}
		if m.done && key.Matches(msg, keys.close) {
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

func (m importModel) percent() float64 {
	if m.run.Max() <= 0 {
		return 0
	}
	return float64(m.value) / float64(m.run.Max())
}

func (m importModel) View() string {
	status := m.spinner.View() + " Importing reference data..."
	switch {
	case m.err != nil:
		status = errorStyle.Render("Import failed: " + humanizeError(m.err))
	case m.done:
		status = successStyle.Render("Import complete")
	}

	data := fmt.Sprintf("%s\n\n%s  %d/%d", status, m.bar.ViewAs(m.percent()), m.value, m.run.Max())
	return renderPage("Offline import "+fitText(m.run.ID(), 8), data, "q: quit")
}
