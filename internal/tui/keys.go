// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit  key.Binding
	close key.Binding
}

var keys = keyMap{
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	close: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "close")),
}
