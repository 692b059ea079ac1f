// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/utils"
)

// PingPath is the server endpoint answering reachability probes.
const PingPath = "/api/ping"

const defaultProbeTimeout = 5 * time.Second

// Prober pings the server and reports the result to a [Status].
type Prober struct {
	client   *utils.HTTPClient
	status   *Status
	interval time.Duration
	logger   *logger.Logger
}

// NewProber builds a prober of the server at address.
func NewProber(address string, interval time.Duration, status *Status, log *logger.Logger) (*Prober, error) {
	client, err := utils.NewHTTPClient(address, defaultProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid probe address: %w", err)
	}

	return &Prober{
		client:   client,
		status:   status,
		interval: interval,
		logger:   log.WithComponent("network_prober"),
	}, nil
}

// Probe pings the server once and updates the status. Any transport error
// or non-2xx answer counts as offline.
func (p *Prober) Probe(ctx context.Context) bool {
	online := true
	resp, err := p.client.R().SetContext(ctx).Get(PingPath)
	switch {
	case err != nil:
		online = false
		p.logger.Debug().
			Err(err).
			Str("func", "Prober.Probe").
			Msg("server unreachable")
	case resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices:
		online = false
		p.logger.Debug().
			Str("func", "Prober.Probe").
			Int("status", resp.StatusCode()).
			Msg("server ping rejected")
	}

	if p.status.Set(online) {
		p.logger.Info().
			Str("func", "Prober.Probe").
			Bool("online", online).
			Msg("network status changed")
	}
	return online
}

// Run probes immediately and then every interval until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
