// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/fishobs/fieldsync/internal/service"
)

// ErrUserQuit is returned when the user leaves a screen before its work
// ended.
var ErrUserQuit = errors.New("quit by user")

func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, service.ErrOffline) || errors.Is(err, service.ErrRemoteUnavailable) {
		return "Network unavailable or server unreachable"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Network unavailable or server unreachable"
	}

	return err.Error()
}
