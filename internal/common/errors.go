// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrVersionConflict = errors.New("version conflict")

	// Session errors (invalid, malformed or revoked token).
	ErrInvalidToken = errors.New("invalid token")
)
