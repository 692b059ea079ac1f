// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import "context"

//go:generate mockgen -source=transport.go -destination=../mock/cache_transport_mock.go -package=mock

// Transport fetches query results from the network for watch
// registrations.
type Transport interface {
	Fetch(ctx context.Context, query Query, vars map[string]any) (Result, error)
}
