// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/fishobs/fieldsync/internal/adapter"
)

// mapRemoteError translates a transport error into a service error, keeping
// the transport error in the chain.
func mapRemoteError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrForbidden),
		errors.Is(err, adapter.ErrTokenExpired),
		errors.Is(err, adapter.ErrInvalidToken):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case errors.Is(err, adapter.ErrBadGateway),
		errors.Is(err, adapter.ErrInternalServerError):
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	return err
}
