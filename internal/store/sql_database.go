// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/migrations"
)

// DB wraps the sqlite connection of the persistence medium.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
