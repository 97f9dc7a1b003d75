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

var credentialColumns = []string{
	"id", "name", "provider", "type", "ciphertext", "iv",
	"metadata", "tags", "favorite", "status", "rotated_at",
	"created_at", "updated_at",
}

type credentialRepository struct {
	*DB
	logger *logger.Logger
}

func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	return &credentialRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *credentialRepository) Create(ctx context.Context, credential models.Credential) (models.Credential, error) {
	log := logger.FromContext(ctx)

	metadata, err := encodeJSONColumn(credential.Metadata)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}
	tags, err := encodeJSONColumn(credential.Tags)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Insert(credential.TableName()).
		Columns(credentialColumns...).
		Values(
			credential.ID,
			credential.Name,
			credential.Provider,
			credential.Type,
			credential.Ciphertext,
			credential.IV,
			metadata,
			tags,
			credential.Favorite,
			credential.Status,
			credential.RotatedAt,
			credential.CreatedAt,
			credential.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "credentialRepository.Create").
			Str("id", credential.ID).
			Msg("failed to insert credential")
		return models.Credential{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return credential, nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id string) (models.Credential, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(credentialColumns...).
		From(models.Credential{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	credential, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrCredentialNotFound
		}
		log.Err(err).
			Str("func", "credentialRepository.GetByID").
			Str("id", id).
			Msg("failed to scan credential row")
		return models.Credential{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}

	return credential, nil
}

func (r *credentialRepository) List(ctx context.Context, filter CredentialFilter) ([]models.Credential, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(credentialColumns...).
		From(models.Credential{}.TableName()).
		OrderBy("created_at ASC")

	if filter.FavoritesOnly {
		builder = builder.Where(sq.Eq{"favorite": true})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Tag != "" {
		// tags is a JSON array of strings; match the quoted element.
		builder = builder.Where(sq.Like{"tags": fmt.Sprintf("%%%q%%", filter.Tag)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "credentialRepository.List").
			Msg("failed to query credentials")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.Credential
	for rows.Next() {
		credential, scanErr := scanCredential(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "credentialRepository.List").
				Msg("failed to scan credential row")
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, scanErr)
		}
		items = append(items, credential)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *credentialRepository) Update(ctx context.Context, id string, update CredentialUpdate) (models.Credential, error) {
	log := logger.FromContext(ctx)

	builder := sq.Update(models.Credential{}.TableName()).Where(sq.Eq{"id": id})

	changed := false
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
		changed = true
	}
	if update.Provider != nil {
		builder = builder.Set("provider", *update.Provider)
		changed = true
	}
	if update.Type != nil {
		builder = builder.Set("type", *update.Type)
		changed = true
	}
	// ciphertext and iv are written together or not at all: an update
	// without a new plaintext must leave the stored pair byte-identical.
	if update.Ciphertext != nil && update.IV != nil {
		builder = builder.
			Set("ciphertext", *update.Ciphertext).
			Set("iv", *update.IV)
		changed = true
	}
	if update.Metadata != nil {
		metadata, err := encodeJSONColumn(*update.Metadata)
		if err != nil {
			return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}
		builder = builder.Set("metadata", metadata)
		changed = true
	}
	if update.Tags != nil {
		tags, err := encodeJSONColumn(*update.Tags)
		if err != nil {
			return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}
		builder = builder.Set("tags", tags)
		changed = true
	}
	if update.Favorite != nil {
		builder = builder.Set("favorite", *update.Favorite)
		changed = true
	}
	if update.Status != nil {
		builder = builder.Set("status", *update.Status)
		changed = true
	}
	if update.RotatedAt != nil {
		builder = builder.Set("rotated_at", *update.RotatedAt)
		changed = true
	}

	if changed {
		builder = builder.Set("updated_at", sq.Expr("CURRENT_TIMESTAMP"))

		query, args, err := builder.ToSql()
		if err != nil {
			return models.Credential{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}

		result, err := r.DB.ExecContext(ctx, query, args...)
		if err != nil {
			log.Err(err).
				Str("func", "credentialRepository.Update").
				Str("id", id).
				Msg("failed to update credential")
			return models.Credential{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
		}

		if affected, _ := result.RowsAffected(); affected == 0 {
			return models.Credential{}, ErrCredentialNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *credentialRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete(models.Credential{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "credentialRepository.Delete").
			Str("id", id).
			Msg("failed to delete credential")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// scanCredential reads one credential row from either *sql.Row or *sql.Rows.
func scanCredential(row interface{ Scan(...any) error }) (models.Credential, error) {
	var item models.Credential
	var metadata, tags string
	var rotatedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Provider,
		&item.Type,
		&item.Ciphertext,
		&item.IV,
		&metadata,
		&tags,
		&item.Favorite,
		&item.Status,
		&rotatedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return models.Credential{}, err
	}

	if rotatedAt.Valid {
		t := rotatedAt.Time
		item.RotatedAt = &t
	}
	if err = decodeJSONColumn(metadata, &item.Metadata); err != nil {
		return models.Credential{}, err
	}
	if err = decodeJSONColumn(tags, &item.Tags); err != nil {
		return models.Credential{}, err
	}

	return item, nil
}
