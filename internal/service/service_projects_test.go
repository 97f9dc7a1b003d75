package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/models"
)

func newTestProjectService(t *testing.T) (ProjectService, CredentialService) {
	t.Helper()

	activity := NewActivityService(&fakeActivityRepo{}, logger.Nop())
	credentials := NewCredentialService(newFakeCredentialRepo(), newTestCipher(t), activity, logger.Nop())
	projects := NewProjectService(newFakeProjectRepo(), credentials, activity, logger.Nop())

	return projects, credentials
}

func TestProjectService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	projects, _ := newTestProjectService(t)

	created, err := projects.Create(ctx, models.Project{Name: "api-server", Description: "backend"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := projects.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "api-server", got.Name)
}

func TestProjectService_CreateRequiresName(t *testing.T) {
	projects, _ := newTestProjectService(t)

	_, err := projects.Create(context.Background(), models.Project{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestProjectService_GetMissing(t *testing.T) {
	projects, _ := newTestProjectService(t)

	_, err := projects.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrProjectNotFound))
}

func TestProjectService_RenderEnv(t *testing.T) {
	ctx := context.Background()
	projects, credentials := newTestProjectService(t)

	gh, err := credentials.Create(ctx, models.Credential{Name: "GITHUB_TOKEN", Value: "tok_abc"})
	require.NoError(t, err)
	db, err := credentials.Create(ctx, models.Credential{Name: "DATABASE_URL", Value: "postgres://localhost/app"})
	require.NoError(t, err)

	project, err := projects.Create(ctx, models.Project{
		Name:          "api-server",
		CredentialIDs: []string{gh.ID, db.ID},
		EnvTemplate:   "GITHUB_TOKEN={{GITHUB_TOKEN}}\nDATABASE_URL={{DATABASE_URL}}\nPORT=8080\n",
	})
	require.NoError(t, err)

	rendered, err := projects.RenderEnv(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "GITHUB_TOKEN=tok_abc\nDATABASE_URL=postgres://localhost/app\nPORT=8080\n", rendered)
}

func TestProjectService_RenderEnvMissingCredential(t *testing.T) {
	ctx := context.Background()
	projects, _ := newTestProjectService(t)

	project, err := projects.Create(ctx, models.Project{
		Name:          "broken",
		CredentialIDs: []string{"gone"},
		EnvTemplate:   "X={{X}}",
	})
	require.NoError(t, err)

	_, err = projects.RenderEnv(ctx, project.ID)
	assert.True(t, errors.Is(err, store.ErrCredentialNotFound))
}
