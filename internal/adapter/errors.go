// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrBadRequest is returned when the server rejects the request payload
	// (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned when the server rejects the bearer token
	// (HTTP 401).
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrForbidden is returned when the token does not grant access to the
	// requested data (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned for unknown endpoints or records (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the server detects a concurrent update of
	// the record (HTTP 409 or an optimistic lock error in the payload).
	ErrConflict = errors.New("version conflict")

	// ErrBadGateway is returned when a proxy in front of the server fails
	// (HTTP 502).
	ErrBadGateway = errors.New("bad gateway")

	// ErrInternalServerError is returned on HTTP 500.
	ErrInternalServerError = errors.New("internal server error")

	// ErrRemote is returned when the server answers 200 with query errors.
	ErrRemote = errors.New("remote query failed")

	// ErrTokenExpired is returned before sending a request whose bearer
	// token is already expired.
	ErrTokenExpired = errors.New("authentication token expired")

	// ErrInvalidToken is returned when the configured token is not a JWT.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrDecodingResponse is returned when the response body cannot be
	// decoded.
	ErrDecodingResponse = errors.New("error decoding response")
)
