// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/internal/utils"
)

type importRequest struct {
	MaxProgression int    `json:"maxProgression"`
	Feature        string `json:"feature"`
}

// importProgress is one line of the import stream. The last line has Done
// set and carries Error when the run failed.
type importProgress struct {
	RunID string `json:"runId"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// runImport starts an import, or joins the one in flight, and streams its
// progress as NDJSON until the run finishes or the client goes away. The
// run itself outlives the request.
func (h *Handler) runImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, "Handler.runImport", fmt.Errorf("%w: %w", ErrInvalidBody, err))
		return
	}

	run := h.services.ImportService.ExecuteImport(context.WithoutCancel(r.Context()), service.ImportOptions{
		MaxProgression: req.MaxProgression,
		Feature:        req.Feature,
	})

	stream := utils.NewNDJSONWriter(w)
	updates := run.Subscribe()
	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("run", run.ID()).Msg("import stream closed by client")
			return
		case value, ok := <-updates:
			if !ok {
				final := importProgress{RunID: run.ID(), Value: run.Value(), Max: run.Max(), Done: true}
				if err := run.Err(); err != nil {
					final.Error = err.Error()
				}
				if err := stream.WriteLine(final); err != nil {
					log.Warn().Err(err).Str("func", "Handler.runImport").Msg("failed to write final progress")
				}
				return
			}

			if err := stream.WriteLine(importProgress{RunID: run.ID(), Value: value, Max: run.Max()}); err != nil {
				log.Warn().Err(err).Str("func", "Handler.runImport").Msg("failed to write progress")
				return
			}
		}
	}
}
