// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the expiration date carried by a JWT bearer token.
// The signature is not verified: the server does that, the client only
// avoids sending a token it knows to be stale. ok is false when the token
// has no "exp" claim.
//
// Example usage:
//
//	exp, ok, err := utils.TokenExpiry(token)
//	if err == nil && ok && exp.Before(time.Now()) {
//	    // ask for a new token
//	}
func TokenExpiry(tokenString string) (exp time.Time, ok bool, err error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("error parsing token: %w", err)
	}

	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("error reading token expiration: %w", err)
	}
	if expiresAt == nil {
		return time.Time{}, false, nil
	}
	return expiresAt.Time, true, nil
}
