// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// RemoteRequest is a query or mutation sent to a remote source.
type RemoteRequest struct {
	// Operation is the operation name, e.g. "LoadTrips" or "SaveTrip".
	Operation string `json:"operationName"`

	// Query is the query document.
	Query string `json:"query"`

	Variables map[string]any `json:"variables,omitempty"`
}

// RemoteResult is the paged answer of a remote source.
type RemoteResult struct {
	Data  []json.RawMessage `json:"data"`
	Total *int              `json:"total,omitempty"`
}

// Decode unmarshals every item of the result with newFn as item factory.
func (r RemoteResult) Decode(newFn func() Entity) ([]Entity, error) {
	items := make([]Entity, 0, len(r.Data))
	for _, raw := range r.Data {
		item := newFn()
		if err := json.Unmarshal(raw, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
