// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

// echoHandler answers with the request body prefixed by "echo: ".
var echoHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.Write(append([]byte("echo: "), body...))
})

func TestWithGZip(t *testing.T) {
	tests := []struct {
		name            string
		acceptEncoding  string
		compressRequest bool
		wantGzipped     bool
	}{
		{name: "plain request, plain response"},
		{name: "client accepts gzip", acceptEncoding: "gzip", wantGzipped: true},
		{name: "gzip among several encodings", acceptEncoding: "deflate, gzip;q=1.0, br", wantGzipped: true},
		{name: "gzipped request body", compressRequest: true},
		{name: "gzip both ways", acceptEncoding: "gzip", compressRequest: true, wantGzipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{"name":"Gwen Drez"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/entities/Vessel", bytes.NewReader(body))
			if tt.compressRequest {
				req = httptest.NewRequest(http.MethodPost, "/api/entities/Vessel", bytes.NewReader(gzipBytes(t, string(body))))
				req.Header.Set("Content-Encoding", "gzip")
			}
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			rr := httptest.NewRecorder()
			withGZip(echoHandler).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			got := rr.Body.String()
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
				assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))
				got = gunzip(t, rr.Body.Bytes())
			} else {
				assert.Empty(t, rr.Header().Get("Content-Encoding"))
			}
			assert.Equal(t, `echo: {"name":"Gwen Drez"}`, got)
		})
	}
}

func TestWithGZip_InvalidRequestBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/entities/Vessel", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")

	called := false
	rr := httptest.NewRecorder()
	withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, called)
}

func TestWithGZip_KeepsStatusCode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/entities/Vessel/7", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rr := httptest.NewRecorder()
	withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"entity not found"}`))
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"error":"entity not found"}`, gunzip(t, rr.Body.Bytes()))
}

func TestWithGZip_ReusesPooledWriters(t *testing.T) {
	handler := withGZip(echoHandler)
	for i := range 5 {
		payload := strings.Repeat("x", i*100)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBytes(t, payload)))
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("Accept-Encoding", "gzip")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, "echo: "+payload, gunzip(t, rr.Body.Bytes()))
	}
}
