// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cache

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"
)

func hashOf(v any) (uint64, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrHashingVariables, err)
	}
	return h, nil
}

// resultKey identifies one cached result: query name plus variables.
func resultKey(query Query, vars map[string]any) (string, error) {
	h, err := hashOf(vars)
	if err != nil {
		return "", err
	}
	return query.Name + "#" + strconv.FormatUint(h, 16), nil
}

// registrationKey identifies a watch registration: query shape, array
// field and variables.
func registrationKey(query Query, arrayField string, vars map[string]any) (string, error) {
	shape, err := hashOf(query.Document)
	if err != nil {
		return "", err
	}
	varsHash, err := hashOf(vars)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(shape, 16) + "|" + arrayField + "|" + strconv.FormatUint(varsHash, 16), nil
}
