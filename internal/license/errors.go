package license

import "errors"

// Sentinel errors for license operations. The split between
// ErrRemoteUnavailable and ErrRejected is load-bearing: a transient network
// failure keeps the cached license usable for offline operation, while an
// explicit rejection destroys it.
var (
	// ErrRemoteUnavailable is returned when the licensing service cannot
	// be reached or answers with a server-side failure. The local cache is
	// left untouched.
	ErrRemoteUnavailable = errors.New("license service unreachable")

	// ErrRejected is returned when the licensing service explicitly
	// refuses the license (expired, revoked, bound to another device).
	// The local cache is cleared before this error is returned.
	ErrRejected = errors.New("license rejected by remote service")

	// ErrInvalidCredentials is returned by Activate when the email or
	// password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoLicense is returned when an operation requires a cached
	// license and none exists.
	ErrNoLicense = errors.New("no cached license")
)
