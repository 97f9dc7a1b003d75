package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/models"
)

func sampleCredential(id string) models.Credential {
	return models.Credential{
		ID:         id,
		Name:       "GitHub token",
		Provider:   "github",
		Type:       "api_key",
		Ciphertext: "Y2lwaGVydGV4dA==",
		IV:         "bm9uY2UxMjM0NTY=",
		Metadata:   map[string]string{"org": "keyport"},
		Tags:       []string{"ci", "github"},
		Favorite:   true,
		Status:     models.CredentialStatusActive,
		CreatedAt:  testTime(0),
		UpdatedAt:  testTime(0),
	}
}

func TestCredentialRepository_CreateAndGet(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	created, err := s.Credentials.Create(ctx, sampleCredential("cred-1"))
	require.NoError(t, err)

	got, err := s.Credentials.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "GitHub token", got.Name)
	assert.Equal(t, "github", got.Provider)
	assert.Equal(t, "Y2lwaGVydGV4dA==", got.Ciphertext)
	assert.Equal(t, "bm9uY2UxMjM0NTY=", got.IV)
	assert.Equal(t, map[string]string{"org": "keyport"}, got.Metadata)
	assert.Equal(t, []string{"ci", "github"}, got.Tags)
	assert.True(t, got.Favorite)
	assert.Nil(t, got.RotatedAt)
}

func TestCredentialRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStorages(t)

	_, err := s.Credentials.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrCredentialNotFound))
}

func TestCredentialRepository_List_Filters(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	first := sampleCredential("cred-1")

	second := sampleCredential("cred-2")
	second.Name = "AWS key"
	second.Favorite = false
	second.Tags = []string{"aws"}
	second.Status = models.CredentialStatusRevoked
	second.CreatedAt = testTime(10)

	_, err := s.Credentials.Create(ctx, first)
	require.NoError(t, err)
	_, err = s.Credentials.Create(ctx, second)
	require.NoError(t, err)

	all, err := s.Credentials.List(ctx, CredentialFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cred-1", all[0].ID) // creation order

	favorites, err := s.Credentials.List(ctx, CredentialFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "cred-1", favorites[0].ID)

	tagged, err := s.Credentials.List(ctx, CredentialFilter{Tag: "aws"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "cred-2", tagged[0].ID)

	revoked, err := s.Credentials.List(ctx, CredentialFilter{Status: models.CredentialStatusRevoked})
	require.NoError(t, err)
	require.Len(t, revoked, 1)
	assert.Equal(t, "cred-2", revoked[0].ID)
}

func TestCredentialRepository_Update_PartialPreservesCiphertext(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	created, err := s.Credentials.Create(ctx, sampleCredential("cred-1"))
	require.NoError(t, err)

	newName := "Renamed token"
	updated, err := s.Credentials.Update(ctx, created.ID, CredentialUpdate{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Renamed token", updated.Name)
	// the stored ciphertext/iv pair must be byte-identical after an
	// update that did not supply a new plaintext
	assert.Equal(t, created.Ciphertext, updated.Ciphertext)
	assert.Equal(t, created.IV, updated.IV)
}

func TestCredentialRepository_Update_NewCiphertext(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	created, err := s.Credentials.Create(ctx, sampleCredential("cred-1"))
	require.NoError(t, err)

	ct, iv := "bmV3LWNpcGhlcg==", "bmV3LW5vbmNlMTI="
	rotated := testTime(60)
	updated, err := s.Credentials.Update(ctx, created.ID, CredentialUpdate{
		Ciphertext: &ct,
		IV:         &iv,
		RotatedAt:  &rotated,
	})
	require.NoError(t, err)

	assert.Equal(t, ct, updated.Ciphertext)
	assert.Equal(t, iv, updated.IV)
	require.NotNil(t, updated.RotatedAt)
	assert.Equal(t, rotated, updated.RotatedAt.UTC())
}

func TestCredentialRepository_Update_NotFound(t *testing.T) {
	s := newTestStorages(t)

	name := "x"
	_, err := s.Credentials.Update(context.Background(), "missing", CredentialUpdate{Name: &name})
	assert.True(t, errors.Is(err, ErrCredentialNotFound))
}

func TestCredentialRepository_Update_EmptyUpdateReturnsCurrent(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	created, err := s.Credentials.Create(ctx, sampleCredential("cred-1"))
	require.NoError(t, err)

	got, err := s.Credentials.Update(ctx, created.ID, CredentialUpdate{})
	require.NoError(t, err)
	assert.Equal(t, created.Ciphertext, got.Ciphertext)
}

func TestCredentialRepository_Delete(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	created, err := s.Credentials.Create(ctx, sampleCredential("cred-1"))
	require.NoError(t, err)

	require.NoError(t, s.Credentials.Delete(ctx, created.ID))

	_, err = s.Credentials.GetByID(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrCredentialNotFound))

	err = s.Credentials.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrCredentialNotFound))
}
