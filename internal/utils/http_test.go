// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"key": "value"}

	n, err := WriteJSON(w, data, http.StatusCreated)

	require.NoError(t, err)
	assert.NotZero(t, n)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, w.Body.String())
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteJSON_NilData(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, nil, http.StatusOK)

	require.NoError(t, err)
	assert.Equal(t, "null", w.Body.String())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteError(w, errors.New("unknown entity kind"), http.StatusNotFound)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown entity kind"}`, w.Body.String())
}

func TestNDJSONWriter(t *testing.T) {
	w := httptest.NewRecorder()
	stream := NewNDJSONWriter(w)

	require.NoError(t, stream.WriteLine(map[string]int{"progress": 10}))
	require.NoError(t, stream.WriteLine(map[string]int{"progress": 20}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	assert.True(t, w.Flushed)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)

	var last map[string]int
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, 20, last["progress"])
}
