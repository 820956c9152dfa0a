// Package services contains business logic.
package services

import "errors"

// Service errors.
var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned when a bearer token is missing, expired or
	// otherwise unusable.
	ErrUnauthorized = errors.New("unauthorized")
)
