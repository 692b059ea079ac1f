// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TrashPrefix prefixes the store name of the trash namespace of a kind.
const TrashPrefix = "Trash#"

// ErrUnknownKind is returned when a type name is not registered in [Kinds].
// It signals a configuration error: unknown kinds never fall back to a
// default store.
var ErrUnknownKind = errors.New("unknown entity kind")

// StoreLayout selects how an entity store is written to the persistence
// medium.
type StoreLayout int

const (
	// LayoutBlob stores the whole array under one key.
	LayoutBlob StoreLayout = iota

	// LayoutPerRecord stores one key per record plus an index of ids. Used
	// for large entity types.
	LayoutPerRecord
)

// Kind describes one registered entity type.
type Kind struct {
	// Name is the type discriminator, equal to Entity.TypeName.
	Name string

	// New returns an empty full record of the kind, used for decoding.
	New func() Entity

	// Layout is the persistence layout of the kind's store.
	Layout StoreLayout
}

// Kinds is an explicit registry of entity kinds known to the application.
type Kinds struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewKinds creates a registry containing the given kinds.
func NewKinds(kinds ...Kind) *Kinds {
	k := &Kinds{kinds: make(map[string]Kind, len(kinds))}
	for _, kind := range kinds {
		k.Register(kind)
	}
	return k
}

// Register adds or replaces a kind.
func (k *Kinds) Register(kind Kind) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kinds[kind.Name] = kind
}

// Lookup resolves a store name to its kind. Trash store names resolve to the
// kind they hold.
func (k *Kinds) Lookup(storeName string) (Kind, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	kind, ok := k.kinds[strings.TrimPrefix(storeName, TrashPrefix)]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, storeName)
	}
	return kind, nil
}

// Names returns the registered kind names in lexical order.
func (k *Kinds) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	names := make([]string, 0, len(k.kinds))
	for name := range k.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TrashName returns the trash store name of a kind.
func TrashName(name string) string {
	if IsTrashName(name) {
		return name
	}
	return TrashPrefix + name
}

// IsTrashName reports whether name designates a trash store.
func IsTrashName(name string) bool {
	return strings.HasPrefix(name, TrashPrefix)
}

// DefaultKinds returns the registry of the fisheries observation entities.
func DefaultKinds() *Kinds {
	return NewKinds(
		Kind{Name: TripTypeName, New: func() Entity { return &Trip{} }, Layout: LayoutPerRecord},
		Kind{Name: OperationTypeName, New: func() Entity { return &Operation{} }},
		Kind{Name: VesselTypeName, New: func() Entity { return &Vessel{} }},
		Kind{Name: PersonTypeName, New: func() Entity { return &Person{} }},
		Kind{Name: ProgramTypeName, New: func() Entity { return &Program{} }},
		Kind{Name: LocationTypeName, New: func() Entity { return NewReferential(LocationTypeName) }},
		Kind{Name: GearTypeName, New: func() Entity { return NewReferential(GearTypeName) }},
		Kind{Name: TaxonTypeName, New: func() Entity { return NewReferential(TaxonTypeName) }},
	)
}
