package store

import (
	"context"
	"time"

	"github.com/keyport-app/agent/models"
)

// CredentialUpdate describes a partial update of a credential row. Nil
// pointer fields are left untouched. Ciphertext and IV travel together: the
// service layer sets both when a new plaintext was supplied, or neither.
// A partial update must never erase a stored secret.
type CredentialUpdate struct {
	Name       *string
	Provider   *string
	Type       *string
	Ciphertext *string
	IV         *string
	Metadata   *map[string]string
	Tags       *[]string
	Favorite   *bool
	Status     *string
	RotatedAt  *time.Time
}

// CredentialFilter narrows List results. Zero values mean "no filter".
type CredentialFilter struct {
	// Tag keeps only credentials carrying this tag.
	Tag string

	// FavoritesOnly keeps only pinned credentials.
	FavoritesOnly bool

	// Status keeps only credentials with this status.
	Status string
}

// CredentialRepository persists encrypted credential rows.
type CredentialRepository interface {
	Create(ctx context.Context, credential models.Credential) (models.Credential, error)
	GetByID(ctx context.Context, id string) (models.Credential, error)
	List(ctx context.Context, filter CredentialFilter) ([]models.Credential, error)
	Update(ctx context.Context, id string, update CredentialUpdate) (models.Credential, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project models.Project) (models.Project, error)
	GetByID(ctx context.Context, id string) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, project models.Project) (models.Project, error)
	Delete(ctx context.Context, id string) error
}

// ChatRepository persists the append-only chat history.
type ChatRepository interface {
	Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
	List(ctx context.Context) ([]models.ChatMessage, error)

	// Clear deletes history entries. keep > 0 retains the newest keep
	// entries; keep == 0 deletes everything.
	Clear(ctx context.Context, keep int) error
}

// ActivityRepository persists the append-only local audit log.
type ActivityRepository interface {
	Append(ctx context.Context, entry models.ActivityEntry) (models.ActivityEntry, error)

	// List returns entries newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// SettingsRepository is the single-row key/value table holding local
// configuration, including the encryption master key.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
