// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// withGZip decodes gzip request bodies and compresses responses for
// clients that accept gzip. Entity lists of reference data get large.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			reader := gzipReaderPool.Get().(*gzip.Reader)
			if err := reader.Reset(r.Body); err != nil {
				gzipReaderPool.Put(reader)
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}

			r.Body = &pooledReadCloser{Reader: reader, release: func() {
				reader.Close()
				gzipReaderPool.Put(reader)
			}}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		writer := gzipWriterPool.Get().(*gzip.Writer)
		writer.Reset(w)
		defer func() {
			writer.Close()
			gzipWriterPool.Put(writer)
		}()

		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, writer: writer}, r)
	})
}

type pooledReadCloser struct {
	io.Reader
	release func()
	once    sync.Once
}

func (p *pooledReadCloser) Close() error {
	p.once.Do(p.release)
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if w.Header().Get("Content-Encoding") == "" {
		w.WriteHeader(http.StatusOK)
	}
	return w.writer.Write(data)
}
