// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the offline field-data client runtime.
//
// It wires the local stores, the query cache, the remote source and the
// services into a single process lifecycle, runs the background workers
// (persistence scheduler, network prober, network watcher) and executes
// one of the client modes: serve the local API, import reference data for
// offline use, or push terminated records to the server.
package client
