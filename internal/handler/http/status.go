// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/utils"
)

type statusResponse struct {
	Online         bool       `json:"online"`
	Dirty          bool       `json:"dirty"`
	HasOfflineData bool       `json:"hasOfflineData"`
	LastSyncDate   *time.Time `json:"lastSyncDate,omitempty"`
	LastUpdateDate *time.Time `json:"lastUpdateDate,omitempty"`
}

// ping answers the connectivity probe of other clients.
func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// status reports the network and storage state. The server update date is
// only asked for while online.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	imports := h.services.ImportService

	resp := statusResponse{
		Online: h.network.Online(),
		Dirty:  h.storage.Dirty(),
	}

	var err error
	if resp.HasOfflineData, err = imports.HasOfflineData(r.Context()); err != nil {
		writeError(w, r, "Handler.status", err)
		return
	}
	if resp.LastSyncDate, err = imports.LastSyncDate(r.Context()); err != nil {
		writeError(w, r, "Handler.status", err)
		return
	}

	if resp.Online {
		resp.LastUpdateDate, err = imports.LastUpdateDate(r.Context())
		if err != nil {
			log.Warn().Err(err).Str("func", "Handler.status").Msg("last update date unavailable")
		}
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
