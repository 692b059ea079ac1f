// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Entity is the identity contract shared by every record handled by the
// offline engine. Business rules of the concrete types are not part of it.
//
// Id convention:
//   - id >= 0 — the record is known to the server;
//   - id < 0  — the record was created locally and is not synchronised yet;
//   - no id   — the record has never been persisted.
type Entity interface {
	// EntityID returns the record id and whether it is set.
	EntityID() (int64, bool)

	// SetEntityID assigns the record id.
	SetEntityID(id int64)

	// ClearEntityID removes the id, turning the record back into a
	// never-persisted one.
	ClearEntityID()

	// LastUpdateDate returns the server-side update date, nil for records
	// the server has never seen.
	LastUpdateDate() *time.Time

	// TypeName is the discriminator used as the store key.
	TypeName() string
}

// Summarizer is implemented by kinds that have a light projection kept in
// memory while the full record lives on the persistence medium.
type Summarizer interface {
	Summary() Entity
}

// Base carries the identity fields common to all entities. Concrete
// entities embed it to satisfy the id part of [Entity].
type Base struct {
	// ID is nil until the first save.
	ID *int64 `json:"id,omitempty"`

	// UpdateDate is set by the server on save and only used for optimistic
	// concurrency checks.
	UpdateDate *time.Time `json:"updateDate,omitempty"`
}

// EntityID implements [Entity].
func (b *Base) EntityID() (int64, bool) {
	if b.ID == nil {
		return 0, false
	}
	return *b.ID, true
}

// SetEntityID implements [Entity].
func (b *Base) SetEntityID(id int64) {
	b.ID = &id
}

// ClearEntityID implements [Entity].
func (b *Base) ClearEntityID() {
	b.ID = nil
}

// LastUpdateDate implements [Entity].
func (b *Base) LastUpdateDate() *time.Time {
	return b.UpdateDate
}

// IsLocal reports whether e carries a local (negative) id.
func IsLocal(e Entity) bool {
	id, ok := e.EntityID()
	return ok && id < 0
}

// IsRemote reports whether e carries a server (non-negative) id.
func IsRemote(e Entity) bool {
	id, ok := e.EntityID()
	return ok && id >= 0
}

// Int64Ptr is a small helper for literals.
func Int64Ptr(v int64) *int64 {
	return &v
}
