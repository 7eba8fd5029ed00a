// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Validation errors.
	ErrValidation = errors.New("validation error")
	ErrInvalidID  = errors.New("invalid id")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Follow graph errors.
	ErrSelfFollow     = errors.New("you cannot follow yourself")
	ErrEmptyFollowSet = errors.New("you are not following anyone yet")
)
