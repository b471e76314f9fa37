// Package common defines shared constants and sentinel errors used across
// the relay's layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")

	// Validation errors. All of them wrap ErrorBadRequest.
	ErrWeakPassword    = badRequest("Password must be at least 8 characters")
	ErrInvalidIdentity = badRequest("invalid email")
	ErrUserExists      = badRequest("User already exists")
	ErrInvalidReset    = badRequest("Invalid or expired token")
	ErrEmptyMessage    = badRequest("message is required")
	ErrInvalidRole     = badRequest("history role must be user or assistant")
	ErrInvalidAmount   = badRequest("amount_eur must be between 0 and 10000")
	ErrInvalidWebhook  = badRequest("Invalid signature")

	// Token codec errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrWrongTokenType   = errors.New("token type not accepted here")
	ErrNoIdentity       = errors.New("token carries no identity")

	// External key source errors.
	ErrKeySourceUnavailable = errors.New("key source unavailable")
	ErrUnknownKey           = errors.New("unknown signing key")

	// Completion provider errors.
	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamError       = errors.New("upstream error")
)

type validationError struct {
	msg string
}

func badRequest(msg string) error { return &validationError{msg: msg} }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrorBadRequest }
