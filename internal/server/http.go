// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type httpServer struct {
	server *http.Server
	logger *logger.Logger

	// ready receives the bound address once the listener is open.
	ready chan net.Addr
}

func newHTTPServer(handler http.Handler, cfg config.ClientAPI, logger *logger.Logger) *httpServer {
	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
		ready:  make(chan net.Addr, 1),
	}
}

func (h *httpServer) RunServer(ctx context.Context) error {
	listener, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", h.server.Addr, err)
	}
	h.ready <- listener.Addr()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(listener)
	}()

	h.logger.Info().Str("address", listener.Addr().String()).Msg("HTTP server listening")

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server Serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return h.Shutdown(shutdownCtx)
}

func (h *httpServer) Shutdown(ctx context.Context) error {
	h.logger.Info().Msg("HTTP server Shutdown")
	if err := h.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}
	return nil
}
