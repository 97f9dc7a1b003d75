package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidServerConfigs indicates invalid listener settings
	// (for example, a malformed listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidRemoteConfigs indicates invalid remote backend settings
	// (for example, a base URL without a scheme).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, an unusable data directory).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
)
