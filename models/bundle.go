package models

import "time"

// BundleManifest identifies one revision of the static UI bundle.
type BundleManifest struct {
	// Version is a human-readable revision string ("2026.8.1").
	Version string `json:"version"`

	// Hash is the content hash of the bundle archive. Two manifests with
	// equal hashes describe byte-identical bundles.
	Hash string `json:"hash"`
}

// Sync states, in the order the state machine visits them.
const (
	SyncStateIdle        = "idle"
	SyncStateChecking    = "checking"
	SyncStateUpToDate    = "up-to-date"
	SyncStateDownloading = "downloading"
	SyncStateInstalling  = "installing"
	SyncStateSynced      = "synced"
	SyncStateError       = "error"
)

// SyncStatus is the bundle manager's introspection snapshot, returned
// by the sync-status endpoint.
type SyncStatus struct {
	// State is one of the SyncState* constants.
	State string `json:"state"`

	// Installed is the manifest of the currently served bundle, if any.
	Installed *BundleManifest `json:"installed,omitempty"`

	// Available is the most recently fetched remote manifest, if it
	// differed from the installed one.
	Available *BundleManifest `json:"available,omitempty"`

	// LastError is the failure reason retained from the last errored sync.
	LastError string `json:"last_error,omitempty"`

	// CheckedAt is the time of the last completed check.
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}
