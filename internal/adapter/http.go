// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/internal/utils"
	"github.com/fishobs/fieldsync/models"
)

// QueryPath is the server endpoint receiving query and mutation documents.
const QueryPath = "/graphql"

const (
	conflictCode     = "CONFLICT"
	unauthorizedCode = "UNAUTHENTICATED"

	lastUpdateDateOperation = "LastUpdateDate"
	lastUpdateDateQuery     = "query LastUpdateDate { lastUpdateDate }"
)

type remoteError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// remoteResponse is the envelope of every answer of the query endpoint.
type remoteResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []remoteError   `json:"errors"`
}

// pagedPayload is the data of list queries and mutations. Documents alias
// the list field as "data" and the count field as "total".
type pagedPayload struct {
	Data  json.RawMessage `json:"data"`
	Total *int            `json:"total"`
}

// HTTPRemoteSource is the HTTP implementation of [RemoteSource] and
// [ReferentialSource].
type HTTPRemoteSource struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	now    func() time.Time
	logger *logger.Logger
}

// NewHTTPRemoteSource builds a remote source posting to the server at
// adapterCfg.HTTPAddress. The configured token, if any, is attached to
// every request.
//
// Returns an error if the address is empty or cannot be parsed as a valid
// URL.
func NewHTTPRemoteSource(adapterCfg config.ClientAdapter, log *logger.Logger) (*HTTPRemoteSource, error) {
	client, err := utils.NewHTTPClient(adapterCfg.HTTPAddress, adapterCfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	source := &HTTPRemoteSource{
		client: client,
		now:    time.Now,
		logger: log.WithComponent("remote_source"),
	}
	source.SetToken(adapterCfg.Token)
	return source, nil
}

// SetToken stores token (whitespace-trimmed) for use in the Authorization
// header of all subsequent requests.
func (h *HTTPRemoteSource) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token returns the bearer token currently held by the source.
func (h *HTTPRemoteSource) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Query implements [RemoteSource].
func (h *HTTPRemoteSource) Query(ctx context.Context, req models.RemoteRequest) (models.RemoteResult, error) {
	var payload pagedPayload
	if err := h.post(ctx, req, &payload); err != nil {
		return models.RemoteResult{}, err
	}
	return toRemoteResult(payload)
}

// Mutate implements [RemoteSource].
func (h *HTTPRemoteSource) Mutate(ctx context.Context, req models.RemoteRequest) (models.RemoteResult, error) {
	var payload pagedPayload
	if err := h.post(ctx, req, &payload); err != nil {
		return models.RemoteResult{}, err
	}
	return toRemoteResult(payload)
}

// LastUpdateDate implements [ReferentialSource].
func (h *HTTPRemoteSource) LastUpdateDate(ctx context.Context) (*time.Time, error) {
	var payload struct {
		LastUpdateDate *time.Time `json:"lastUpdateDate"`
	}

	err := h.post(ctx, models.RemoteRequest{
		Operation: lastUpdateDateOperation,
		Query:     lastUpdateDateQuery,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.LastUpdateDate, nil
}

func (h *HTTPRemoteSource) post(ctx context.Context, req models.RemoteRequest, dest any) error {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	start := h.now()
	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(QueryPath)
	if err != nil {
		return fmt.Errorf("%s request: %w", req.Operation, err)
	}

	h.logger.Debug().
		Str("func", "HTTPRemoteSource.post").
		Str("operation", req.Operation).
		Int("status", resp.StatusCode()).
		Dur("duration", h.now().Sub(start)).
		Msg("remote request done")

	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("%s: %w", req.Operation, err)
	}

	var envelope remoteResponse
	if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodingResponse, req.Operation, err)
	}
	if err = mapRemoteErrors(envelope.Errors); err != nil {
		return fmt.Errorf("%s: %w", req.Operation, err)
	}

	if dest == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err = json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodingResponse, req.Operation, err)
	}
	return nil
}

// authedRequest refuses to send a token that is known to be expired.
func (h *HTTPRemoteSource) authedRequest(ctx context.Context) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)

	token := h.Token()
	if token == "" {
		return req, nil
	}

	exp, ok, err := utils.TokenExpiry(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if ok && !exp.After(h.now()) {
		return nil, fmt.Errorf("%w: expired at %s", ErrTokenExpired, exp.Format(time.RFC3339))
	}

	req.SetAuthToken(token)
	return req, nil
}

// toRemoteResult accepts a list, a single object or null as data.
func toRemoteResult(payload pagedPayload) (models.RemoteResult, error) {
	result := models.RemoteResult{Data: []json.RawMessage{}, Total: payload.Total}

	raw := bytes.TrimSpace(payload.Data)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return result, nil
	case raw[0] == '[':
		if err := json.Unmarshal(raw, &result.Data); err != nil {
			return models.RemoteResult{}, fmt.Errorf("%w: %w", ErrDecodingResponse, err)
		}
		return result, nil
	default:
		result.Data = append(result.Data, json.RawMessage(raw))
		return result, nil
	}
}
