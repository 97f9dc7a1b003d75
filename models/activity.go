package models

import "time"

// Common activity action tags. The column is free-form; these cover the
// actions the agent itself records.
const (
	ActivityCredentialCreated = "credential.created"
	ActivityCredentialUpdated = "credential.updated"
	ActivityCredentialDeleted = "credential.deleted"
	ActivityProjectCreated    = "project.created"
	ActivityProjectUpdated    = "project.updated"
	ActivityProjectDeleted    = "project.deleted"
	ActivityLogin             = "session.login"
	ActivityLogout            = "session.logout"
	ActivityBundleSynced      = "bundle.synced"
)

// ActivityEntry is a local audit record. Append-only, read newest first,
// never synced anywhere.
type ActivityEntry struct {
	// ID is the UUID primary key, generated on append.
	ID string `json:"id"`

	// Action is a short machine-readable tag ("credential.created").
	Action string `json:"action"`

	// Details is optional free text describing the action.
	Details string `json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the ActivityEntry model.
func (a ActivityEntry) TableName() string {
	return "activity_log"
}
