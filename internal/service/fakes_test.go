package service

import (
	"context"
	"sync"

	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/models"
)

// fakeCredentialRepo is an in-memory CredentialRepository with optional
// function-field overrides for error paths.
type fakeCredentialRepo struct {
	mu    sync.Mutex
	rows  map[string]models.Credential
	order []string

	createFn func(ctx context.Context, credential models.Credential) (models.Credential, error)
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{rows: map[string]models.Credential{}}
}

func (f *fakeCredentialRepo) Create(ctx context.Context, credential models.Credential) (models.Credential, error) {
	if f.createFn != nil {
		return f.createFn(ctx, credential)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[credential.ID] = credential
	f.order = append(f.order, credential.ID)
	return credential, nil
}

func (f *fakeCredentialRepo) GetByID(_ context.Context, id string) (models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return models.Credential{}, store.ErrCredentialNotFound
	}
	return row, nil
}

func (f *fakeCredentialRepo) List(_ context.Context, filter store.CredentialFilter) ([]models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Credential
	for _, id := range f.order {
		row := f.rows[id]
		if filter.FavoritesOnly && !row.Favorite {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.Tag != "" && !hasTag(row.Tags, filter.Tag) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeCredentialRepo) Update(_ context.Context, id string, update store.CredentialUpdate) (models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return models.Credential{}, store.ErrCredentialNotFound
	}
	if update.Name != nil {
		row.Name = *update.Name
	}
	if update.Provider != nil {
		row.Provider = *update.Provider
	}
	if update.Type != nil {
		row.Type = *update.Type
	}
	if update.Ciphertext != nil {
		row.Ciphertext = *update.Ciphertext
	}
	if update.IV != nil {
		row.IV = *update.IV
	}
	if update.Metadata != nil {
		row.Metadata = *update.Metadata
	}
	if update.Tags != nil {
		row.Tags = *update.Tags
	}
	if update.Favorite != nil {
		row.Favorite = *update.Favorite
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.RotatedAt != nil {
		row.RotatedAt = update.RotatedAt
	}
	f.rows[id] = row
	return row, nil
}

func (f *fakeCredentialRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return store.ErrCredentialNotFound
	}
	delete(f.rows, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// fakeProjectRepo is an in-memory ProjectRepository.
type fakeProjectRepo struct {
	mu   sync.Mutex
	rows map[string]models.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{rows: map[string]models.Project{}}
}

func (f *fakeProjectRepo) Create(_ context.Context, project models.Project) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[project.ID] = project
	return project, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return models.Project{}, store.ErrProjectNotFound
	}
	return row, nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Project, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, project models.Project) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[project.ID]; !ok {
		return models.Project{}, store.ErrProjectNotFound
	}
	f.rows[project.ID] = project
	return project, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeChatRepo records appended messages in order.
type fakeChatRepo struct {
	mu       sync.Mutex
	messages []models.ChatMessage

	appendFn func(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
}

func (f *fakeChatRepo) Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	if f.appendFn != nil {
		return f.appendFn(ctx, message)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return message, nil
}

func (f *fakeChatRepo) List(context.Context) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatMessage(nil), f.messages...), nil
}

func (f *fakeChatRepo) Clear(_ context.Context, keep int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if keep <= 0 || keep >= len(f.messages) {
		if keep <= 0 {
			f.messages = nil
		}
		return nil
	}
	f.messages = f.messages[len(f.messages)-keep:]
	return nil
}

func (f *fakeChatRepo) recorded() []models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatMessage(nil), f.messages...)
}

// fakeActivityRepo records appended entries.
type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (f *fakeActivityRepo) Append(_ context.Context, entry models.ActivityEntry) (models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeActivityRepo) List(_ context.Context, limit int) ([]models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.ActivityEntry(nil), f.entries...)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeActivityRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

// fakeLicense is a function-field LicenseSource.
type fakeLicense struct {
	loadFn          func() (models.License, bool)
	updatedCredits  []float64
	updateCreditsMu sync.Mutex
}

func (f *fakeLicense) Load() (models.License, bool) {
	if f.loadFn == nil {
		return models.License{}, false
	}
	return f.loadFn()
}

func (f *fakeLicense) UpdateCredits(credits float64) {
	f.updateCreditsMu.Lock()
	defer f.updateCreditsMu.Unlock()
	f.updatedCredits = append(f.updatedCredits, credits)
}

// fakeMode is a fixed ModeSource.
type fakeMode struct {
	mode models.Mode
}

func (f *fakeMode) Get() models.Mode { return f.mode }
