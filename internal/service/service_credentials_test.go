package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/internal/crypto"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/models"
)

func newTestCipher(t *testing.T) crypto.CipherService {
	t.Helper()

	key, err := crypto.GenerateMasterKey()
	require.NoError(t, err)

	cipher, err := crypto.NewCipherService(key)
	require.NoError(t, err)

	return cipher
}

func newTestCredentialService(t *testing.T) (CredentialService, *fakeCredentialRepo, *fakeActivityRepo) {
	t.Helper()

	repo := newFakeCredentialRepo()
	activityRepo := &fakeActivityRepo{}
	activity := NewActivityService(activityRepo, logger.Nop())
	svc := NewCredentialService(repo, newTestCipher(t), activity, logger.Nop())

	return svc, repo, activityRepo
}

func TestCredentialService_CreateEncryptsValue(t *testing.T) {
	ctx := context.Background()
	svc, repo, activityRepo := newTestCredentialService(t)

	created, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc", Provider: "github"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Value, "plaintext must not survive create")
	assert.Equal(t, models.CredentialStatusActive, created.Status)

	stored := repo.rows[created.ID]
	assert.NotEmpty(t, stored.Ciphertext)
	assert.NotEmpty(t, stored.IV)
	assert.NotContains(t, stored.Ciphertext, "tok_abc")

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", got.Value)

	assert.Equal(t, []string{models.ActivityCredentialCreated}, activityRepo.actions())
}

func TestCredentialService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCredentialService(t)

	_, err := svc.Create(ctx, models.Credential{Value: "v"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Create(ctx, models.Credential{Name: "n"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCredentialService_ListDecryptsAndFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCredentialService(t)

	_, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc", Tags: []string{"ci"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.Credential{Name: "AWS", Value: "tok_xyz", Favorite: true})
	require.NoError(t, err)

	all, err := svc.List(ctx, store.CredentialFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tok_abc", all[0].Value)
	assert.Equal(t, "tok_xyz", all[1].Value)

	favorites, err := svc.List(ctx, store.CredentialFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "AWS", favorites[0].Name)

	tagged, err := svc.List(ctx, store.CredentialFilter{Tag: "ci"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "GH", tagged[0].Name)
}

func TestCredentialService_UpdateWithoutValueKeepsCiphertext(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestCredentialService(t)

	created, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc"})
	require.NoError(t, err)
	before := repo.rows[created.ID]

	newName := "GitHub"
	updated, err := svc.Update(ctx, created.ID, CredentialChange{Name: &newName})
	require.NoError(t, err)

	after := repo.rows[created.ID]
	assert.Equal(t, "GitHub", updated.Name)
	assert.Equal(t, before.Ciphertext, after.Ciphertext, "ciphertext must be byte-identical")
	assert.Equal(t, before.IV, after.IV)
	assert.Nil(t, after.RotatedAt)
	assert.Equal(t, "tok_abc", updated.Value)
}

func TestCredentialService_UpdateWithValueRotates(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestCredentialService(t)

	created, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc"})
	require.NoError(t, err)
	before := repo.rows[created.ID]

	newValue := "tok_new"
	updated, err := svc.Update(ctx, created.ID, CredentialChange{Value: &newValue})
	require.NoError(t, err)

	after := repo.rows[created.ID]
	assert.NotEqual(t, before.Ciphertext, after.Ciphertext)
	assert.NotEqual(t, before.IV, after.IV)
	require.NotNil(t, after.RotatedAt)
	assert.Equal(t, "tok_new", updated.Value)
}

func TestCredentialService_UpdateEmptyValueRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCredentialService(t)

	created, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc"})
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(ctx, created.ID, CredentialChange{Value: &empty})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCredentialService_DeleteRecordsActivity(t *testing.T) {
	ctx := context.Background()
	svc, _, activityRepo := newTestCredentialService(t)

	created, err := svc.Create(ctx, models.Credential{Name: "GH", Value: "tok_abc"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, store.ErrCredentialNotFound))

	assert.Contains(t, activityRepo.actions(), models.ActivityCredentialDeleted)
}

func TestCredentialService_DeleteMissing(t *testing.T) {
	svc, _, _ := newTestCredentialService(t)

	err := svc.Delete(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, store.ErrCredentialNotFound))
}
