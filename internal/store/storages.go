// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/models"
)

// MemoryDSN selects the in-process medium instead of a sqlite file.
const MemoryDSN = ":memory:"

// Storages groups the storage layer of the client: the persistence medium,
// the storage coordinator over it and the settings area.
type Storages struct {
	Medium      Medium
	Coordinator *Coordinator
	Settings    *Settings

	db *DB
}

// NewStorages initialises the storage layer:
//  1. Opens the sqlite database at cfg.DSN (or an in-memory medium for
//     [MemoryDSN]) and runs pending migrations.
//  2. Creates the [Coordinator] for kinds and the [Settings] area.
//
// Stores are not restored here; call [Coordinator.Start].
func NewStorages(ctx context.Context, cfg config.ClientStorage, kinds *models.Kinds, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	var (
		medium Medium
		db     *DB
	)
	if cfg.DSN == MemoryDSN {
		medium = NewMemoryMedium()
	} else {
		var err error
		db, err = NewConnectSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}

		if err = db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		medium = NewSQLiteMedium(db)
	}

	coordinator := NewCoordinator(kinds, medium, CoordinatorOptions{
		PersistInterval: cfg.PersistInterval,
		PersistThrottle: cfg.PersistThrottle,
	}, log)

	return &Storages{
		Medium:      medium,
		Coordinator: coordinator,
		Settings:    NewSettings(medium),
		db:          db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
