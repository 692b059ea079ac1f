// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Callers should use [errors.Is].
var (
	// ErrNotLocal is returned when an operation reserved to local records is
	// applied to a record known to the server.
	ErrNotLocal = errors.New("record is not local")

	// ErrNotReadyToSync is returned when synchronizing a record that was not
	// terminated first.
	ErrNotReadyToSync = errors.New("record is not ready to sync")

	// ErrNotRootEntity is returned when a record kind has no synchronization
	// status.
	ErrNotRootEntity = errors.New("record kind is not root data")

	// ErrNoDocuments is returned when no remote documents are registered for
	// a record kind.
	ErrNoDocuments = errors.New("no remote documents for kind")

	// ErrOffline is returned when a remote operation is requested while the
	// network is down.
	ErrOffline = errors.New("network offline")

	// ErrInvalidServerID is returned when the server answers a save without a
	// server id.
	ErrInvalidServerID = errors.New("server returned no id")

	// ErrEmptyResult is returned when the server answers a read or a save
	// without any record.
	ErrEmptyResult = errors.New("server returned no record")

	// ErrConflict is returned when the server rejects a save because the
	// record changed remotely.
	ErrConflict = errors.New("record changed on server")

	// ErrAuthentication is returned when the server rejects the credentials.
	ErrAuthentication = errors.New("authentication required")

	// ErrRemoteUnavailable is returned when the server fails to answer.
	ErrRemoteUnavailable = errors.New("server unavailable")
)

// OperationError carries the context a UI needs to render a failed
// operation: the operation name, the record kind and the record id.
type OperationError struct {
	Op       string
	TypeName string
	ID       int64
	Err      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s#%d: %v", e.Op, e.TypeName, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, typeName string, id int64, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, TypeName: typeName, ID: id, Err: err}
}

// ImportError reports the import job that failed.
type ImportError struct {
	JobIndex int
	JobName  string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import job %d (%s) failed: %v", e.JobIndex, e.JobName, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
