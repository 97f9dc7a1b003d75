package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

type projectService struct {
	projects    store.ProjectRepository
	credentials CredentialService
	activity    ActivityService
	uuid        *utils.UUIDGenerator

	logger *logger.Logger
}

func NewProjectService(projects store.ProjectRepository, credentials CredentialService, activity ActivityService, logger *logger.Logger) ProjectService {
	return &projectService{
		projects:    projects,
		credentials: credentials,
		activity:    activity,
		uuid:        utils.NewUUIDGenerator(),
		logger:      logger,
	}
}

func (s *projectService) Create(ctx context.Context, project models.Project) (models.Project, error) {
	if project.Name == "" {
		return models.Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	now := time.Now().UTC()
	project.ID = s.uuid.Generate()
	project.CreatedAt = now
	project.UpdatedAt = now

	created, err := s.projects.Create(ctx, project)
	if err != nil {
		return models.Project{}, err
	}

	s.activity.Record(ctx, models.ActivityProjectCreated, created.Name)

	return created, nil
}

func (s *projectService) Get(ctx context.Context, id string) (models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Update(ctx context.Context, project models.Project) (models.Project, error) {
	if project.ID == "" {
		return models.Project{}, fmt.Errorf("%w: project id is required", ErrValidation)
	}
	if project.Name == "" {
		return models.Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	updated, err := s.projects.Update(ctx, project)
	if err != nil {
		return models.Project{}, err
	}

	s.activity.Record(ctx, models.ActivityProjectUpdated, updated.Name)

	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActivityProjectDeleted, project.Name)

	return nil
}

func (s *projectService) RenderEnv(ctx context.Context, id string) (string, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	rendered := project.EnvTemplate
	for _, credentialID := range project.CredentialIDs {
		credential, err := s.credentials.Get(ctx, credentialID)
		if err != nil {
			return "", fmt.Errorf("resolve credential %s: %w", credentialID, err)
		}
		placeholder := "{{" + credential.Name + "}}"
		rendered = strings.ReplaceAll(rendered, placeholder, credential.Value)
	}

	return rendered, nil
}
