package models

// HealthResponse is the body of the health endpoint. It is intentionally
// cheap to produce: every field comes from in-memory state.
type HealthResponse struct {
	Status        string `json:"status"`
	Mode          Mode   `json:"mode"`
	Version       string `json:"version"`
	BundleVersion string `json:"bundleVersion,omitempty"`
	BundleHash    string `json:"bundleHash,omitempty"`
}

// ErrorResponse is the structured error body every local endpoint and every
// failed proxy call returns.
type ErrorResponse struct {
	Error string `json:"error"`

	// Code is a stable machine-readable tag ("unauthorized",
	// "credits_exhausted", "remote_unreachable").
	Code string `json:"code,omitempty"`
}

// LoginRequest is the body of the desktop login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ModeRequest is the body of the mode write endpoint.
type ModeRequest struct {
	Mode Mode `json:"mode"`
}
