// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/internal/utils"
	"github.com/fishobs/fieldsync/models"
)

// NetworkStatus reports whether the data server is reachable.
type NetworkStatus interface {
	Online() bool
}

// StorageState reports whether local changes wait for persistence.
type StorageState interface {
	Dirty() bool
}

type Handler struct {
	services *service.Services
	kinds    *models.Kinds
	network  NetworkStatus
	storage  StorageState
	ids      *utils.UUIDGenerator

	logger *logger.Logger
}

func NewHandler(services *service.Services, kinds *models.Kinds, network NetworkStatus, storage StorageState, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		kinds:    kinds,
		network:  network,
		storage:  storage,
		ids:      utils.NewUUIDGenerator(),
		logger:   logger,
	}
}
