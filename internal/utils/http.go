// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON serializes the given data to JSON and writes it to the HTTP response.
//
// It sets the "Content-Type" header to "application/json" and writes
// the provided HTTP status code before sending the response body.
//
// If marshaling fails, it responds with 500 Internal Server Error
// and returns a wrapped error.
//
// Example usage:
//
//	WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteError writes {"error": err.Error()} with statusCode.
func WriteError(w http.ResponseWriter, err error, statusCode int) (int, error) {
	return WriteJSON(w, map[string]string{"error": err.Error()}, statusCode)
}

// NDJSONWriter streams newline-delimited JSON values, flushing after each
// line so that the client sees progress as it happens.
type NDJSONWriter struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher
	started bool
}

// NewNDJSONWriter wraps w. Headers are written on the first line.
func NewNDJSONWriter(w http.ResponseWriter) *NDJSONWriter {
	flusher, _ := w.(http.Flusher)
	return &NDJSONWriter{w: w, enc: json.NewEncoder(w), flusher: flusher}
}

// WriteLine encodes v as one line.
func (n *NDJSONWriter) WriteLine(v any) error {
	if !n.started {
		n.w.Header().Set("Content-Type", "application/x-ndjson")
		n.w.WriteHeader(http.StatusOK)
		n.started = true
	}

	if err := n.enc.Encode(v); err != nil {
		return fmt.Errorf("error writing stream line: %w", err)
	}
	if n.flusher != nil {
		n.flusher.Flush()
	}
	return nil
}
