// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SortDirection is the ordering direction of a paged load.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// LoadOptions are the variables of a paged load of one entity type.
type LoadOptions struct {
	// Offset is the index of the first record returned.
	Offset int `json:"offset"`

	// Size is the page size. Zero returns only the total, a negative value
	// returns every record after Offset.
	Size int `json:"size"`

	// SortBy is a dotted attribute path such as "department.name".
	SortBy string `json:"sortBy,omitempty"`

	SortDirection SortDirection `json:"sortDirection,omitempty"`

	// Filter is applied before sorting and slicing. Nil keeps every record.
	Filter func(Entity) bool `json:"-"`

	// Trash loads from the trash namespace of the type.
	Trash bool `json:"trash,omitempty"`
}

// Page is one paged result. Total is the filtered count before slicing.
type Page struct {
	Data  []Entity `json:"data"`
	Total int      `json:"total"`
}

// IDs returns the ids of the page records.
func (p Page) IDs() []int64 {
	ids := make([]int64, 0, len(p.Data))
	for _, e := range p.Data {
		if id, ok := e.EntityID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
