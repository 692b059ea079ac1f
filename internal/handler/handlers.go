// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/handler/http"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/models"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the local API handlers enabled by cfg.
func NewHandlers(
	services *service.Services,
	kinds *models.Kinds,
	network http.NetworkStatus,
	storage http.StorageState,
	cfg config.ClientAPI,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, kinds, network, storage, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
