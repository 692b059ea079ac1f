// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the local control API of the client.
//
// The server serves until its context is cancelled and then shuts down
// gracefully, so it runs as one of the client background workers.
package server
