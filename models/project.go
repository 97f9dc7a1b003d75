package models

import "time"

// Project groups credentials for a single workspace. The env template is a
// plain text blob with `{{NAME}}` placeholders that the agent substitutes
// with decrypted credential values on demand.
type Project struct {
	// ID is the UUID primary key, generated on create.
	ID string `json:"id"`

	// Name is the user-facing project name.
	Name string `json:"name"`

	// Description is an optional free-text summary.
	Description string `json:"description,omitempty"`

	// CredentialIDs is the ordered list of credential ids associated with
	// the project. Order is preserved as supplied by the UI.
	CredentialIDs []string `json:"credential_ids"`

	// EnvTemplate is the environment-file template rendered by the
	// project env endpoint.
	EnvTemplate string `json:"env_template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Project model.
func (p Project) TableName() string {
	return "projects"
}
