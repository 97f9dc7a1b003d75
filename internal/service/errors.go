package service

import "errors"

var (
	// ErrNotAuthorized means no valid cached license exists. Local
	// authenticated endpoints fail closed on it.
	ErrNotAuthorized = errors.New("no valid license")

	// ErrCreditsExhausted means the cached balance is zero on a
	// non-unlimited plan. Raised before any outbound call is attempted.
	ErrCreditsExhausted = errors.New("credit balance exhausted")

	// ErrRemoteUnavailable means the remote service could not be reached
	// or answered with a server error.
	ErrRemoteUnavailable = errors.New("remote service unavailable")

	// ErrValidation means the request payload failed a service-level check.
	ErrValidation = errors.New("validation failed")
)
