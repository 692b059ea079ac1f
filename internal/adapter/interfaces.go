// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the offline engine
// and the fisheries data server.
//
// The primary abstraction is [RemoteSource], which sends named query and
// mutation documents and returns paged results. The package ships an
// HTTP implementation ([NewHTTPRemoteSource]) that posts documents to the
// server query endpoint with a bearer token, and a [QueryTransport] that
// lets the watch registry of the cache package fetch results through a
// remote source.
//
// Error values defined in errors.go are mapped from HTTP status codes and
// query error payloads in errors_mapper.go so that callers can use
// [errors.Is] for transport-agnostic handling (e.g. [ErrConflict] for 409,
// [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"time"

	"github.com/fishobs/fieldsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_source_mock.go -package=mock

// RemoteSource sends queries and mutations to the server.
type RemoteSource interface {
	// Query runs a read-only document and returns the paged result.
	Query(ctx context.Context, req models.RemoteRequest) (models.RemoteResult, error)

	// Mutate runs a mutation document. The result holds the records saved by
	// the server, with their server ids and update dates.
	Mutate(ctx context.Context, req models.RemoteRequest) (models.RemoteResult, error)
}

// ReferentialSource exposes the reference data state of the server.
type ReferentialSource interface {
	// LastUpdateDate returns the date of the last reference data change on
	// the server, nil when the server has none.
	LastUpdateDate(ctx context.Context) (*time.Time, error)
}
