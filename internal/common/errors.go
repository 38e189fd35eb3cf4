// Package common defines shared constants and sentinel errors used across
// client and server layers of LotKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity marks a detectable local data-integrity violation, such as
	// a media row whose blob is missing. It must never be retried or papered
	// over with a placeholder.
	ErrIntegrity = errors.New("integrity violation")

	// ErrOffline means work was skipped because no connectivity was detected.
	// Skipped is not failed: it resumes automatically once online.
	ErrOffline = errors.New("offline")

	// ErrTransient marks a failure worth retrying (network, storage busy).
	ErrTransient = errors.New("transient failure")

	// ErrExhausted marks an operation dropped after its retry budget ran out.
	// Surfacing it is a silent-data-loss risk, so logs must distinguish it
	// from ordinary retries.
	ErrExhausted = errors.New("retry budget exhausted")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrScopeViolation means an object key did not match the ownership
	// prefix derived from the caller's token.
	ErrScopeViolation = errors.New("object key outside caller scope")
)

// AuthHeaderName is the HTTP header carrying the bearer device token.
const AuthHeaderName = "Authorization"
