// Package auth verifies the identity tokens minted by the collaborating
// identity provider. The engine never resolves identity or permissions
// itself; it only needs the viewer's ID and privileged flag out of a
// token it can trust.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrMissingToken is returned when no token was supplied.
	ErrMissingToken = errors.New("missing token")
)
