// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncStatus is the offline-readiness state of a root data record.
type SyncStatus string

const (
	// SyncStatusDirty marks a record created or modified locally and not
	// ready for upload.
	SyncStatusDirty SyncStatus = "DIRTY"

	// SyncStatusReadyToSync marks a locally complete record awaiting upload.
	SyncStatusReadyToSync SyncStatus = "READY_TO_SYNC"

	// SyncStatusSync marks a record confirmed on the server.
	SyncStatusSync SyncStatus = "SYNC"

	// SyncStatusDeleted marks a record deleted on the server.
	SyncStatusDeleted SyncStatus = "DELETED"
)

// RootEntity is a root-level data entity: it carries a synchronization
// status and may own nested entities that need local ids of their own.
type RootEntity interface {
	Entity

	SynchronizationStatus() SyncStatus
	SetSynchronizationStatus(status SyncStatus)

	// Children returns nested entities persisted together with the root.
	Children() []Entity
}
