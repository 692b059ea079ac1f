// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the local control API a UI process uses to drive
// the offline engine.
//
// It exposes route wiring, request handlers, and middleware. Request tracing,
// access logging and response compression are handled in this package
// before requests are delegated to the service layer. Import progress is
// streamed as newline-delimited JSON.
package http
