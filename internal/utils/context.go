// Package utils provides general-purpose helper utilities used across
// different parts of the agent: type-safe context keys, UUID generation,
// and JSON response writing.
package utils

import (
	"context"

	"github.com/keyport-app/agent/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// LicenseCtxKey is the key under which the license auth middleware stores
// the validated cached license for downstream handlers.
var LicenseCtxKey = contextKey("license")

// GetLicenseFromContext retrieves the cached license placed in the context
// by the auth middleware.
//
// Returns the license and an ok flag:
//   - ok == true: value is found and has the correct type
//   - ok == false: value is missing or has an unexpected type
func GetLicenseFromContext(ctx context.Context) (models.License, bool) {
	lic, ok := ctx.Value(LicenseCtxKey).(models.License)
	return lic, ok
}
