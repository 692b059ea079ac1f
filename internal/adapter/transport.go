// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fishobs/fieldsync/internal/cache"
	"github.com/fishobs/fieldsync/models"
)

// QueryTransport fetches watched query results through a [RemoteSource].
// Results are shaped as {"data": [...], "total": n}.
type QueryTransport struct {
	source RemoteSource
}

// NewQueryTransport returns a cache transport over source.
func NewQueryTransport(source RemoteSource) *QueryTransport {
	return &QueryTransport{source: source}
}

// Fetch implements cache.Transport.
func (t *QueryTransport) Fetch(ctx context.Context, query cache.Query, vars map[string]any) (cache.Result, error) {
	remote, err := t.source.Query(ctx, models.RemoteRequest{
		Operation: query.Name,
		Query:     query.Document,
		Variables: vars,
	})
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(remote.Data))
	for _, raw := range remote.Data {
		item := make(cache.Item)
		if err = json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: %s item: %w", ErrDecodingResponse, query.Name, err)
		}
		items = append(items, item)
	}

	result := cache.Result{"data": items}
	if remote.Total != nil {
		result["total"] = *remote.Total
	}
	return result, nil
}
