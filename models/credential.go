package models

import "time"

// Credential statuses. Stored verbatim in the status column.
const (
	CredentialStatusActive  = "active"
	CredentialStatusRevoked = "revoked"
	CredentialStatusExpired = "expired"
)

// Credential is a locally stored secret (API key, token, password) belonging
// to the signed-in user. The plaintext value exists only transiently in
// memory while being encrypted or decrypted; at rest only Ciphertext and IV
// are persisted.
type Credential struct {
	// ID is the UUID primary key, generated on create.
	ID string `json:"id"`

	// Name is the user-facing display name ("GitHub token").
	Name string `json:"name"`

	// Provider tags the issuing service ("github", "aws", "openai").
	Provider string `json:"provider,omitempty"`

	// Type tags the kind of secret ("api_key", "oauth_token", "password").
	Type string `json:"type,omitempty"`

	// Value carries the plaintext on the API boundary only: inbound on
	// create/update, outbound on read. Never persisted.
	Value string `json:"value,omitempty"`

	// Ciphertext is the base64-encoded AES-GCM output (auth tag included).
	// Not exposed via JSON.
	Ciphertext string `json:"-"`

	// IV is the base64-encoded nonce used for this ciphertext.
	// Not exposed via JSON.
	IV string `json:"-"`

	// Metadata is an opaque key/value mapping attached by the UI.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Tags is a free-form label set used for filtering.
	Tags []string `json:"tags,omitempty"`

	// Favorite pins the credential in the UI list.
	Favorite bool `json:"favorite"`

	// Status is one of the CredentialStatus* constants.
	Status string `json:"status"`

	// RotatedAt is the last time the stored value was replaced.
	RotatedAt *time.Time `json:"rotated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Credential model.
func (c Credential) TableName() string {
	return "credentials"
}
