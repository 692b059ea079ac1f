// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/fishobs/fieldsync/models"
)

type sortKey struct {
	entity models.Entity
	value  gjson.Result
}

// sortEntities stable-sorts entities in place by the value at the dotted
// JSON path, comparing strings case-sensitively. Records without a value at
// path sort first in ascending order.
func sortEntities(entities []models.Entity, path string, direction models.SortDirection) {
	keys := make([]sortKey, len(entities))
	for i, e := range entities {
		keys[i] = sortKey{entity: e}
		raw, err := json.Marshal(e)
		if err != nil {
			continue
		}
		keys[i].value = gjson.GetBytes(raw, path)
	}

	desc := direction == models.SortDesc
	sort.SliceStable(keys, func(i, j int) bool {
		if desc {
			return lessValue(keys[j].value, keys[i].value)
		}
		return lessValue(keys[i].value, keys[j].value)
	})

	for i := range keys {
		entities[i] = keys[i].entity
	}
}

func lessValue(a, b gjson.Result) bool {
	aMissing := !a.Exists() || a.Type == gjson.Null
	bMissing := !b.Exists() || b.Type == gjson.Null
	switch {
	case aMissing && bMissing:
		return false
	case aMissing:
		return true
	case bMissing:
		return false
	}
	return a.Less(b, true)
}
