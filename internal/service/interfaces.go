package service

import (
	"context"
	"time"

	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/models"
)

// CredentialChange describes a partial credential update on the API
// boundary. Nil fields are left untouched. A non-nil Value is re-encrypted
// and replaces the stored ciphertext; a nil Value preserves the stored
// ciphertext and iv byte for byte.
type CredentialChange struct {
	Name     *string            `json:"name,omitempty"`
	Provider *string            `json:"provider,omitempty"`
	Type     *string            `json:"type,omitempty"`
	Value    *string            `json:"value,omitempty"`
	Metadata *map[string]string `json:"metadata,omitempty"`
	Tags     *[]string          `json:"tags,omitempty"`
	Favorite *bool              `json:"favorite,omitempty"`
	Status   *string            `json:"status,omitempty"`
}

// CredentialService stores secrets encrypted and returns them decrypted.
type CredentialService interface {
	Create(ctx context.Context, credential models.Credential) (models.Credential, error)
	Get(ctx context.Context, id string) (models.Credential, error)
	List(ctx context.Context, filter store.CredentialFilter) ([]models.Credential, error)
	Update(ctx context.Context, id string, change CredentialChange) (models.Credential, error)
	Delete(ctx context.Context, id string) error
}

// ProjectService manages projects and renders their env templates.
type ProjectService interface {
	Create(ctx context.Context, project models.Project) (models.Project, error)
	Get(ctx context.Context, id string) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, project models.Project) (models.Project, error)
	Delete(ctx context.Context, id string) error

	// RenderEnv substitutes {{NAME}} placeholders in the project's env
	// template with the decrypted values of its credentials, keyed by
	// credential name.
	RenderEnv(ctx context.Context, id string) (string, error)
}

// ChatService owns the local chat history and the mode-gated send call.
type ChatService interface {
	History(ctx context.Context) ([]models.ChatMessage, error)

	// ClearHistory deletes history entries, retaining the newest keep
	// entries when keep > 0.
	ClearHistory(ctx context.Context, keep int) error

	// Send answers the prompt. Offline mode produces a synthetic local
	// reply without any network call; online mode requires a licensed
	// session with remaining credits and forwards to the remote service.
	Send(ctx context.Context, req models.ChatSendRequest) (models.ChatSendResponse, error)
}

// ActivityService records and lists local audit entries.
type ActivityService interface {
	Record(ctx context.Context, action, details string)
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// LicenseSource is the slice of the license manager the services need.
type LicenseSource interface {
	Load() (models.License, bool)
	UpdateCredits(credits float64)
}

// ModeSource reports the current routing mode.
type ModeSource interface {
	Get() models.Mode
}

// clock lets tests pin timestamps.
type clock func() time.Time
