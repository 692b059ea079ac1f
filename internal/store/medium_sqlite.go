// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fishobs/fieldsync/internal/logger"
)

// SQLiteMedium is a [Medium] backed by the kv table of a sqlite database.
type SQLiteMedium struct {
	*DB
}

// NewSQLiteMedium wraps an open database. The schema must be migrated.
func NewSQLiteMedium(db *DB) *SQLiteMedium {
	return &SQLiteMedium{DB: db}
}

func (m *SQLiteMedium) Get(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetValueQuery(key)
	if err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Get").Str("key", key).Msg("error building query")
		return nil, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = m.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Get").Str("key", key).Msg("error reading value")
		return nil, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, true, nil
}

func (m *SQLiteMedium) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSetValueQuery(key, value)
	if err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Set").Str("key", key).Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = m.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Set").Str("key", key).Msg("error writing value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (m *SQLiteMedium) Remove(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRemoveValueQuery(key)
	if err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Remove").Str("key", key).Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = m.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "SQLiteMedium.Remove").Str("key", key).Msg("error removing value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
