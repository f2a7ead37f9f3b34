// Package common defines shared constants and sentinel errors used across
// the layers of Bookshelf. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Authentication workflow errors. Registration against a taken email and a
	// failed login are reported to clients with the same generic response, so
	// that account existence cannot be probed.
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors (invalid or malformed vs. past expiry).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
