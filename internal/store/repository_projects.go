package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/models"
)

var projectColumns = []string{
	"id", "name", "description", "credential_ids", "env_template",
	"created_at", "updated_at",
}

type projectRepository struct {
	*DB
	logger *logger.Logger
}

func NewProjectRepository(db *DB, logger *logger.Logger) ProjectRepository {
	return &projectRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *projectRepository) Create(ctx context.Context, project models.Project) (models.Project, error) {
	log := logger.FromContext(ctx)

	credentialIDs, err := encodeJSONColumn(project.CredentialIDs)
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Insert(project.TableName()).
		Columns(projectColumns...).
		Values(
			project.ID,
			project.Name,
			project.Description,
			credentialIDs,
			project.EnvTemplate,
			project.CreatedAt,
			project.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "projectRepository.Create").
			Str("id", project.ID).
			Msg("failed to insert project")
		return models.Project{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return project, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (models.Project, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(projectColumns...).
		From(models.Project{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, ErrProjectNotFound
		}
		log.Err(err).
			Str("func", "projectRepository.GetByID").
			Str("id", id).
			Msg("failed to scan project row")
		return models.Project{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}

	return project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(projectColumns...).
		From(models.Project{}.TableName()).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "projectRepository.List").
			Msg("failed to query projects")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "projectRepository.List").
				Msg("failed to scan project row")
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, scanErr)
		}
		items = append(items, project)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *projectRepository) Update(ctx context.Context, project models.Project) (models.Project, error) {
	log := logger.FromContext(ctx)

	credentialIDs, err := encodeJSONColumn(project.CredentialIDs)
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Update(project.TableName()).
		Set("name", project.Name).
		Set("description", project.Description).
		Set("credential_ids", credentialIDs).
		Set("env_template", project.EnvTemplate).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "projectRepository.Update").
			Str("id", project.ID).
			Msg("failed to update project")
		return models.Project{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.Project{}, ErrProjectNotFound
	}

	return r.GetByID(ctx, project.ID)
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete(models.Project{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "projectRepository.Delete").
			Str("id", id).
			Msg("failed to delete project")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var item models.Project
	var credentialIDs string

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&credentialIDs,
		&item.EnvTemplate,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return models.Project{}, err
	}

	if err = decodeJSONColumn(credentialIDs, &item.CredentialIDs); err != nil {
		return models.Project{}, err
	}

	return item, nil
}
