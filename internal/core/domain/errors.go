package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested blob or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingConfig indicates required configuration is absent.
	// Startup aborts before any processing when this is returned.
	ErrMissingConfig = errors.New("missing required configuration")

	// ErrUnsupportedProvider indicates an unknown mailbox provider name.
	ErrUnsupportedProvider = errors.New("unsupported mailbox provider")

	// ErrRateLimited indicates the provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
