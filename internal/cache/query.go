// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fishobs/fieldsync/models"
)

// TypenameField holds the item type inside cached results.
const TypenameField = "__typename"

// Query identifies a list query: Name is the operation name used for
// fan-out, Document is the query shape.
type Query struct {
	Name     string
	Document string
}

// Result is a JSON-shaped query result.
type Result map[string]any

// Item is one element of the array field of a [Result].
type Item = map[string]any

// Identity returns the normalized identity "<typename>:<id>" of an item.
func Identity(item Item) (string, bool) {
	typename, _ := item[TypenameField].(string)
	id, ok := ItemID(item)
	if typename == "" || !ok {
		return "", false
	}
	return typename + ":" + strconv.FormatInt(id, 10), true
}

// ItemID returns the numeric id of an item.
func ItemID(item Item) (int64, bool) {
	return toInt64(item["id"])
}

// SameIdentity is the default item equality: same type and id.
func SameIdentity(a, b Item) bool {
	ia, okA := Identity(a)
	ib, okB := Identity(b)
	return okA && okB && ia == ib
}

// ItemFromEntity encodes an entity as a cache item.
func ItemFromEntity(e models.Entity) (Item, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s: %w", e.TypeName(), err)
	}

	item := make(Item)
	if err = json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", e.TypeName(), err)
	}
	item[TypenameField] = e.TypeName()
	return item, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// clone copies the top level of r so that mutations do not alter the
// instance other readers hold.
func (r Result) clone() Result {
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// items returns a copy of the array field.
func (r Result) items(field string) ([]Item, error) {
	switch list := r[field].(type) {
	case []Item:
		return append([]Item(nil), list...), nil
	case []any:
		out := make([]Item, 0, len(list))
		for _, v := range list {
			item, ok := v.(Item)
			if !ok {
				return nil, fmt.Errorf("%w: %s holds a non-object", ErrNotAnArray, field)
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotAnArray, field)
	}
}
