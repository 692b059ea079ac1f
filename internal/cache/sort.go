// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Comparator orders two items like [strings.Compare].
type Comparator func(a, b Item) int

// SortComparator orders items by the value at a dotted path. Items without
// a value at path come first in ascending order.
func SortComparator(path string, descending bool) Comparator {
	return func(a, b Item) int {
		c := compareValues(valueAt(a, path), valueAt(b, path))
		if descending {
			return -c
		}
		return c
	}
}

func valueAt(item Item, path string) gjson.Result {
	raw, err := json.Marshal(item)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(raw, path)
}

func compareValues(a, b gjson.Result) int {
	aMissing := !a.Exists() || a.Type == gjson.Null
	bMissing := !b.Exists() || b.Type == gjson.Null
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return -1
	case bMissing:
		return 1
	case a.Less(b, true):
		return -1
	case b.Less(a, true):
		return 1
	default:
		return 0
	}
}
