package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/models"
)

type activityRepository struct {
	*DB
	logger *logger.Logger
}

func NewActivityRepository(db *DB, logger *logger.Logger) ActivityRepository {
	return &activityRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *activityRepository) Append(ctx context.Context, entry models.ActivityEntry) (models.ActivityEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert(entry.TableName()).
		Columns("id", "action", "details", "created_at").
		Values(entry.ID, entry.Action, entry.Details, entry.CreatedAt).
		ToSql()
	if err != nil {
		return models.ActivityEntry{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "activityRepository.Append").
			Str("action", entry.Action).
			Msg("failed to insert activity entry")
		return models.ActivityEntry{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return entry, nil
}

func (r *activityRepository) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select("id", "action", "details", "created_at").
		From(models.ActivityEntry{}.TableName()).
		OrderBy("created_at DESC, id DESC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "activityRepository.List").
			Msg("failed to query activity log")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.ActivityEntry
	for rows.Next() {
		var item models.ActivityEntry
		if scanErr := rows.Scan(&item.ID, &item.Action, &item.Details, &item.CreatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "activityRepository.List").
				Msg("failed to scan activity row")
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, scanErr)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, rowsErr)
	}

	return items, nil
}
