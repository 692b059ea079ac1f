// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Settings is a small JSON key-value area on the persistence medium, kept
// apart from entity keys.
type Settings struct {
	medium Medium
}

// NewSettings returns settings stored on medium.
func NewSettings(medium Medium) *Settings {
	return &Settings{medium: medium}
}

// Get decodes the value of key into dest. It reports false when the key is
// not set.
func (s *Settings) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, found, err := s.medium.Get(ctx, settingsKey(key))
	if err != nil {
		return false, fmt.Errorf("error reading setting %s: %w", key, err)
	}
	if !found {
		return false, nil
	}

	if err = json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: setting %s: %w", ErrDecodingEntity, key, err)
	}
	return true, nil
}

// Set stores value under key.
func (s *Settings) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: setting %s: %w", ErrEncodingEntity, key, err)
	}

	if err = s.medium.Set(ctx, settingsKey(key), payload); err != nil {
		return fmt.Errorf("error writing setting %s: %w", key, err)
	}
	return nil
}

// Remove unsets key.
func (s *Settings) Remove(ctx context.Context, key string) error {
	if err := s.medium.Remove(ctx, settingsKey(key)); err != nil {
		return fmt.Errorf("error removing setting %s: %w", key, err)
	}
	return nil
}
