// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/internal/store"
	"github.com/fishobs/fieldsync/internal/utils"
	"github.com/fishobs/fieldsync/models"
)

var errorStatusMap = map[error]int{
	ErrInvalidID:    http.StatusBadRequest,
	ErrInvalidQuery: http.StatusBadRequest,
	ErrInvalidBody:  http.StatusBadRequest,

	service.ErrNotLocal:          http.StatusConflict,
	service.ErrNotReadyToSync:    http.StatusConflict,
	service.ErrConflict:          http.StatusConflict,
	service.ErrNotRootEntity:     http.StatusBadRequest,
	service.ErrNoDocuments:       http.StatusNotImplemented,
	service.ErrOffline:           http.StatusServiceUnavailable,
	service.ErrEmptyResult:       http.StatusNotFound,
	service.ErrInvalidServerID:   http.StatusBadGateway,
	service.ErrRemoteUnavailable: http.StatusBadGateway,
	service.ErrAuthentication:    http.StatusUnauthorized,

	models.ErrUnknownKind:       http.StatusNotFound,
	store.ErrEntityNotFound:     http.StatusNotFound,
	store.ErrEntityNameRequired: http.StatusBadRequest,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers {"error": ...} with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)
	log := logger.FromRequest(r)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	utils.WriteError(w, err, status)
}
