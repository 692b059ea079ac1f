// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fishobs/fieldsync/internal/service"
	"github.com/fishobs/fieldsync/internal/utils"
	"github.com/fishobs/fieldsync/models"
)

// defaultPageSize applies when the size query parameter is absent.
const defaultPageSize = 100

// pageResponse is the body of a paged load.
type pageResponse struct {
	Data  []models.Entity `json:"data"`
	Total int             `json:"total"`
}

// syncReportResponse is service.SyncReport with failures rendered as text.
type syncReportResponse struct {
	Synchronized []service.SyncedRecord `json:"synchronized"`
	Failed       []failedRecord         `json:"failed"`
}

type failedRecord struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func (h *Handler) loadAll(w http.ResponseWriter, r *http.Request) {
	kind, err := h.parseKind(r)
	if err != nil {
		writeError(w, r, "Handler.loadAll", err)
		return
	}

	opts, err := parseLoadOptions(r)
	if err != nil {
		writeError(w, r, "Handler.loadAll", err)
		return
	}

	page, err := h.services.EntityService.LoadAll(r.Context(), kind, opts)
	if err != nil {
		writeError(w, r, "Handler.loadAll", err)
		return
	}

	data := page.Data
	if data == nil {
		data = []models.Entity{}
	}
	utils.WriteJSON(w, pageResponse{Data: data, Total: page.Total}, http.StatusOK)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.parseKindAndID(r)
	if err != nil {
		writeError(w, r, "Handler.load", err)
		return
	}

	e, err := h.services.EntityService.Load(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, "Handler.load", err)
		return
	}

	utils.WriteJSON(w, e, http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	kind, err := h.kinds.Lookup(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, "Handler.save", err)
		return
	}

	e := kind.New()
	if err = json.NewDecoder(r.Body).Decode(e); err != nil {
		writeError(w, r, "Handler.save", fmt.Errorf("%w: %w", ErrInvalidBody, err))
		return
	}

	saved, err := h.services.EntityService.Save(r.Context(), e)
	if err != nil {
		writeError(w, r, "Handler.save", err)
		return
	}

	utils.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.parseKindAndID(r)
	if err != nil {
		writeError(w, r, "Handler.delete", err)
		return
	}

	if err = h.services.EntityService.Delete(r.Context(), kind, id); err != nil {
		writeError(w, r, "Handler.delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moveToTrash(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.parseKindAndID(r)
	if err != nil {
		writeError(w, r, "Handler.moveToTrash", err)
		return
	}

	trashed, err := h.services.EntityService.MoveToTrash(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, "Handler.moveToTrash", err)
		return
	}

	utils.WriteJSON(w, trashed, http.StatusOK)
}

func (h *Handler) terminate(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.parseKindAndID(r)
	if err != nil {
		writeError(w, r, "Handler.terminate", err)
		return
	}

	e, err := h.services.EntityService.Load(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, "Handler.terminate", err)
		return
	}

	root, ok := e.(models.RootEntity)
	if !ok {
		writeError(w, r, "Handler.terminate", fmt.Errorf("%w: %s", service.ErrNotRootEntity, kind))
		return
	}

	terminated, err := h.services.RootDataService.Terminate(r.Context(), root)
	if err != nil {
		writeError(w, r, "Handler.terminate", err)
		return
	}

	utils.WriteJSON(w, terminated, http.StatusOK)
}

func (h *Handler) synchronize(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.parseKindAndID(r)
	if err != nil {
		writeError(w, r, "Handler.synchronize", err)
		return
	}

	synced, err := h.services.RootDataService.SynchronizeByID(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, "Handler.synchronize", err)
		return
	}
	if synced == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	utils.WriteJSON(w, synced, http.StatusOK)
}

// synchronizeAll answers 200 with the report even when some records failed.
func (h *Handler) synchronizeAll(w http.ResponseWriter, r *http.Request) {
	kind, err := h.parseKind(r)
	if err != nil {
		writeError(w, r, "Handler.synchronizeAll", err)
		return
	}

	report, err := h.services.RootDataService.SynchronizeAll(r.Context(), kind)
	if err != nil && len(report.Synchronized) == 0 && len(report.Failed) == 0 {
		writeError(w, r, "Handler.synchronizeAll", err)
		return
	}

	resp := syncReportResponse{
		Synchronized: make([]service.SyncedRecord, 0, len(report.Synchronized)),
		Failed:       make([]failedRecord, 0, len(report.Failed)),
	}
	resp.Synchronized = append(resp.Synchronized, report.Synchronized...)
	for _, f := range report.Failed {
		resp.Failed = append(resp.Failed, failedRecord{ID: f.ID, Error: f.Err.Error()})
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) parseKind(r *http.Request) (string, error) {
	kind, err := h.kinds.Lookup(chi.URLParam(r, "kind"))
	if err != nil {
		return "", err
	}
	return kind.Name, nil
}

func (h *Handler) parseKindAndID(r *http.Request) (string, int64, error) {
	kind, err := h.parseKind(r)
	if err != nil {
		return "", 0, err
	}

	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return kind, id, nil
}

func parseLoadOptions(r *http.Request) (models.LoadOptions, error) {
	q := r.URL.Query()
	opts := models.LoadOptions{Size: defaultPageSize}

	var err error
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			return opts, fmt.Errorf("%w: offset=%q", ErrInvalidQuery, v)
		}
	}
	if v := q.Get("size"); v != "" {
		if opts.Size, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("%w: size=%q", ErrInvalidQuery, v)
		}
	}
	if v := q.Get("trash"); v != "" {
		if opts.Trash, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("%w: trash=%q", ErrInvalidQuery, v)
		}
	}

	opts.SortBy = q.Get("sortBy")
	switch dir := models.SortDirection(q.Get("sortDirection")); dir {
	case "":
	case models.SortAsc, models.SortDesc:
		opts.SortDirection = dir
	default:
		return opts, fmt.Errorf("%w: sortDirection=%q", ErrInvalidQuery, dir)
	}

	return opts, nil
}
