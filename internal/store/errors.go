// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by the entity stores and the storage coordinator.
// Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNameRequired is returned when neither the store options nor
	// the record itself name the target store. It is a programmer error.
	ErrEntityNameRequired = errors.New("entity name required")

	// ErrEntityNotFound is returned when a record addressed by id does not
	// exist in the store.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEncodingEntity is returned when a record cannot be encoded for the
	// persistence medium.
	ErrEncodingEntity = errors.New("error encoding entity")

	// ErrDecodingEntity is returned when a value read from the persistence
	// medium cannot be decoded into a record of the store kind.
	ErrDecodingEntity = errors.New("error decoding entity")

	// ErrNotStarted is returned by operations that need the restored state
	// before [Coordinator.Start] completed.
	ErrNotStarted = errors.New("storage coordinator not started")
)

// Low-level persistence medium errors. These wrap the driver error when a
// SQL operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query with the
	// query builder fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT or DELETE
	// statement fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a value row fails.
	ErrScanningRow = errors.New("failed to scan value row")
)
