// Package common defines shared constants and sentinel errors used across
// the Cloud Capsule server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation marks missing or malformed user input.
	ErrValidation = errors.New("validation error")

	// ErrCapsuleSealed is returned when a mutation targets a capsule whose
	// open date has already passed.
	ErrCapsuleSealed = errors.New("capsule is already open")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrResetTokenExpired   = errors.New("reset token expired")
)
