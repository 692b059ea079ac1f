// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/fishobs/fieldsync/internal/service"

type progressMsg struct {
	value int
}

type importDoneMsg struct{}

type pushDoneMsg struct {
	report service.SyncReport
	err    error
}
