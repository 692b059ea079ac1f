// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/fishobs/fieldsync/models"
)

// EntityService routes entity reads and writes to the local store or to the
// server depending on the network status and on the record ids.
type EntityService interface {
	// LoadAll returns one page of typeName records. Offline, trash reads and
	// local-only reads are served by the local store.
	LoadAll(ctx context.Context, typeName string, opts models.LoadOptions) (models.Page, error)

	// WatchAll streams pages of typeName until ctx is done. Online, the
	// stream follows the watched query in the transport cache.
	WatchAll(ctx context.Context, typeName string, opts models.LoadOptions) (<-chan models.Page, error)

	// Load returns the full record. Negative ids are always read locally.
	Load(ctx context.Context, typeName string, id int64) (models.Entity, error)

	// Save saves e locally when offline or when e carries a local id,
	// remotely otherwise. Remote saves are inserted into every watched list.
	Save(ctx context.Context, e models.Entity) (models.Entity, error)

	// Delete removes the record locally or remotely. Remote deletes are
	// removed from every watched list.
	Delete(ctx context.Context, typeName string, id int64) error

	// MoveToTrash moves a local record into the trash namespace of its kind.
	// Server records return ErrNotLocal.
	MoveToTrash(ctx context.Context, typeName string, id int64) (models.Entity, error)

	// BeginEdit registers e as being edited. A network loss turns edited
	// synchronized records back to DIRTY.
	BeginEdit(e models.RootEntity)

	// EndEdit unregisters e.
	EndEdit(e models.RootEntity)

	// Editing returns the number of records being edited.
	Editing() int

	// WatchNetwork applies network losses to edited records until ctx is
	// done.
	WatchNetwork(ctx context.Context)
}

// RootDataService drives the push half of synchronization for root data
// entities.
type RootDataService interface {
	// Terminate marks e complete. A local record gets ids for its children,
	// status READY_TO_SYNC and is saved locally. A server record is
	// terminated by the server.
	Terminate(ctx context.Context, e models.RootEntity) (models.RootEntity, error)

	// Synchronize uploads a local READY_TO_SYNC record. The local copy is
	// removed and the server copy, with status SYNC, is returned and
	// inserted into watched lists. Server records are returned unchanged.
	Synchronize(ctx context.Context, e models.RootEntity) (models.RootEntity, error)

	// SynchronizeByID loads the local record with id and synchronizes it.
	// Server ids are a no-op returning nil.
	SynchronizeByID(ctx context.Context, typeName string, id int64) (models.RootEntity, error)

	// SynchronizeAll synchronizes every local READY_TO_SYNC record of
	// typeName. The report lists synchronized and failed records; err joins
	// the failures.
	SynchronizeAll(ctx context.Context, typeName string) (SyncReport, error)

	// MarkDirty turns a SYNC record back to DIRTY and saves it locally.
	MarkDirty(ctx context.Context, e models.RootEntity) error
}

// ImportService is the import orchestrator: it clears the transport cache,
// runs the import jobs and persists the local stores, reporting progress.
type ImportService interface {
	// ExecuteImport starts an import run, or returns the run in flight.
	ExecuteImport(ctx context.Context, opts ImportOptions) *ImportRun

	// Running returns the run in flight, nil when idle.
	Running() *ImportRun

	// HasOfflineData reports whether an import of the configured feature
	// has completed once.
	HasOfflineData(ctx context.Context) (bool, error)

	// LastSyncDate returns the date of the last completed import, nil when
	// none.
	LastSyncDate(ctx context.Context) (*time.Time, error)

	// LastUpdateDate returns the date of the last reference data change on
	// the server.
	LastUpdateDate(ctx context.Context) (*time.Time, error)
}

// ImportJob is one step of an import run.
type ImportJob interface {
	// Name identifies the job in logs and errors.
	Name() string

	// Run performs the job. report takes the absolute progress of the job,
	// between 0 and budget.
	Run(ctx context.Context, budget int, report func(value int)) error
}

// SettingsStorage keeps small typed values across restarts.
type SettingsStorage interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
