// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyAddress is returned by [NewHTTPClient] for a blank base address.
var ErrEmptyAddress = errors.New("empty address")

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client, err := utils.NewHTTPClient("localhost:8080", 10*time.Second)
//	resp, err := client.R().Get("/api/ping")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a client bound to the normalised base address. A
// zero timeout leaves resty's default in place.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient(address string, timeout time.Duration) (*HTTPClient, error) {
	baseURL, err := NormalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid http address: %w", err)
	}

	client := resty.New().SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPClient{Client: client}, nil
}

// NormalizeBaseURL trims raw, adds the http scheme when none is given and
// drops trailing slashes.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
