// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishobs/fieldsync/internal/logger"
)

func serveWithLogging(t *testing.T, method, target string, next http.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))

	h := newMiddlewareHandler(logger.Nop())
	rr := httptest.NewRecorder()
	h.withLogging(next).ServeHTTP(rr, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return rr, entry
}

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		status     int
		body       string
		wantStatus float64
	}{
		{name: "ok list", method: http.MethodGet, target: "/api/entities/Vessel?size=10", status: http.StatusOK, body: `{"data":[],"total":0}`, wantStatus: 200},
		{name: "not found", method: http.MethodGet, target: "/api/entities/Trip/-9", status: http.StatusNotFound, body: `{"error":"entity not found"}`, wantStatus: 404},
		{name: "no content", method: http.MethodDelete, target: "/api/entities/Trip/-1", status: http.StatusNoContent, wantStatus: 204},
		{name: "implicit ok", method: http.MethodGet, target: "/api/ping", body: `{"status":"ok"}`, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, entry := serveWithLogging(t, tt.method, tt.target, func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			})

			assert.Equal(t, int(tt.wantStatus), rr.Code)
			assert.Equal(t, tt.body, rr.Body.String())

			assert.Equal(t, "info", entry["level"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.target, entry["uri"])
			assert.Equal(t, tt.wantStatus, entry["status"])
			assert.Equal(t, float64(len(tt.body)), entry["size"])
			assert.Contains(t, entry, "duration")
		})
	}
}

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("abc"))

	assert.Equal(t, http.StatusCreated, w.status)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 3, w.size)
}

func TestResponseWriter_Flush(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}

	w.Write([]byte("line\n"))
	w.Flush()
	assert.True(t, rr.Flushed)
}
