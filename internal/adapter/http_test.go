// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
	"github.com/fishobs/fieldsync/models"
)

var loadTrips = models.RemoteRequest{
	Operation: "LoadTrips",
	Query:     "query LoadTrips($offset: Int, $size: Int) { data: trips(offset: $offset, size: $size) { id } total: tripsCount }",
	Variables: map[string]any{"offset": 0, "size": 2},
}

// newTestSource creates an HTTPRemoteSource pointed at the test server.
func newTestSource(t *testing.T, serverURL, token string) *HTTPRemoteSource {
	t.Helper()
	source, err := NewHTTPRemoteSource(config.ClientAdapter{
		HTTPAddress:    serverURL,
		RequestTimeout: time.Second,
		Token:          token,
	}, logger.Nop())
	require.NoError(t, err)
	return source
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-key"))
	require.NoError(t, err)
	return token
}

func respond(body string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// ── constructor ───────────────────────────────────────────────────────────────

func TestNewHTTPRemoteSource_InvalidAddress(t *testing.T) {
	_, err := NewHTTPRemoteSource(config.ClientAdapter{HTTPAddress: ""}, logger.Nop())
	assert.Error(t, err)
}

// ── Query ─────────────────────────────────────────────────────────────────────

func TestQuery_Success(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, QueryPath, r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))

		var got models.RemoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "LoadTrips", got.Operation)
		assert.EqualValues(t, 2, got.Variables["size"])

		respond(`{"data":{"data":[{"id":1},{"id":2}],"total":9}}`, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	result, err := newTestSource(t, srv.URL, token).Query(context.Background(), loadTrips)

	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.JSONEq(t, `{"id":2}`, string(result.Data[1]))
	require.NotNil(t, result.Total)
	assert.Equal(t, 9, *result.Total)
}

func TestQuery_NoTokenSendsNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		respond(`{"data":{"data":null}}`, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	result, err := newTestSource(t, srv.URL, "").Query(context.Background(), loadTrips)

	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.Nil(t, result.Total)
}

func TestQuery_ExpiredTokenIsNotSent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	source := newTestSource(t, srv.URL, signedToken(t, time.Now().Add(-time.Minute)))
	_, err := source.Query(context.Background(), loadTrips)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called)
}

func TestQuery_MalformedToken(t *testing.T) {
	srv := httptest.NewServer(respond(`{}`, http.StatusOK))
	defer srv.Close()

	_, err := newTestSource(t, srv.URL, "opaque").Query(context.Background(), loadTrips)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestQuery_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "bad request", status: http.StatusBadRequest, want: ErrBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "conflict", status: http.StatusConflict, want: ErrConflict},
		{name: "bad gateway", status: http.StatusBadGateway, want: ErrBadGateway},
		{name: "internal", status: http.StatusInternalServerError, want: ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond("boom", tt.status))
			defer srv.Close()

			_, err := newTestSource(t, srv.URL, "").Query(context.Background(), loadTrips)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuery_UnmappedStatus(t *testing.T) {
	srv := httptest.NewServer(respond("", http.StatusTeapot))
	defer srv.Close()

	_, err := newTestSource(t, srv.URL, "").Query(context.Background(), loadTrips)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 418")
}

func TestQuery_RemoteErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "generic",
			body: `{"errors":[{"message":"field trips not found"}]}`,
			want: ErrRemote,
		},
		{
			name: "conflict code",
			body: `{"errors":[{"message":"stale","extensions":{"code":"CONFLICT"}}]}`,
			want: ErrConflict,
		},
		{
			name: "conflict message",
			body: `{"errors":[{"message":"Version conflict on Trip#12"}]}`,
			want: ErrConflict,
		},
		{
			name: "unauthenticated",
			body: `{"errors":[{"message":"login required","extensions":{"code":"UNAUTHENTICATED"}}]}`,
			want: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond(tt.body, http.StatusOK))
			defer srv.Close()

			_, err := newTestSource(t, srv.URL, "").Query(context.Background(), loadTrips)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuery_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(respond(`<html>`, http.StatusOK))
	defer srv.Close()

	_, err := newTestSource(t, srv.URL, "").Query(context.Background(), loadTrips)
	assert.ErrorIs(t, err, ErrDecodingResponse)
}

// ── Mutate ────────────────────────────────────────────────────────────────────

func TestMutate_SingleObject(t *testing.T) {
	srv := httptest.NewServer(respond(`{"data":{"data":{"id":120,"programLabel":"SIH"}}}`, http.StatusOK))
	defer srv.Close()

	result, err := newTestSource(t, srv.URL, "").Mutate(context.Background(), models.RemoteRequest{
		Operation: "SaveTrip",
		Query:     "mutation SaveTrip($data: TripInput) { data: saveTrip(trip: $data) { id } }",
	})

	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	items, err := result.Decode(func() models.Entity { return &models.Trip{} })
	require.NoError(t, err)
	id, ok := items[0].EntityID()
	assert.True(t, ok)
	assert.Equal(t, int64(120), id)
}

// ── LastUpdateDate ────────────────────────────────────────────────────────────

func TestLastUpdateDate(t *testing.T) {
	srv := httptest.NewServer(respond(`{"data":{"lastUpdateDate":"2026-03-01T10:00:00Z"}}`, http.StatusOK))
	defer srv.Close()

	got, err := newTestSource(t, srv.URL, "").LastUpdateDate(context.Background())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Equal(*got))
}

func TestLastUpdateDate_Null(t *testing.T) {
	srv := httptest.NewServer(respond(`{"data":{"lastUpdateDate":null}}`, http.StatusOK))
	defer srv.Close()

	got, err := newTestSource(t, srv.URL, "").LastUpdateDate(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetToken_Trims(t *testing.T) {
	source := newTestSource(t, "localhost:1", "")
	source.SetToken("  abc \n")
	assert.Equal(t, "abc", source.Token())
}
