package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/models"
)

type chatRepository struct {
	*DB
	logger *logger.Logger
}

func NewChatRepository(db *DB, logger *logger.Logger) ChatRepository {
	return &chatRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *chatRepository) Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	var toolCall sql.NullString
	if message.ToolCall != nil {
		encoded, err := encodeJSONColumn(message.ToolCall)
		if err != nil {
			return models.ChatMessage{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
		}
		toolCall = sql.NullString{String: encoded, Valid: true}
	}

	query, args, err := sq.Insert(message.TableName()).
		Columns("id", "role", "content", "tool_call", "created_at").
		Values(message.ID, message.Role, message.Content, toolCall, message.CreatedAt).
		ToSql()
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "chatRepository.Append").
			Str("id", message.ID).
			Msg("failed to insert chat message")
		return models.ChatMessage{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return message, nil
}

func (r *chatRepository) List(ctx context.Context) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("id", "role", "content", "tool_call", "created_at").
		From(models.ChatMessage{}.TableName()).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "chatRepository.List").
			Msg("failed to query chat history")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.ChatMessage
	for rows.Next() {
		var item models.ChatMessage
		var toolCall sql.NullString

		if scanErr := rows.Scan(&item.ID, &item.Role, &item.Content, &toolCall, &item.CreatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "chatRepository.List").
				Msg("failed to scan chat message row")
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, scanErr)
		}

		if toolCall.Valid {
			if decodeErr := decodeJSONColumn(toolCall.String, &item.ToolCall); decodeErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrScanningRows, decodeErr)
			}
		}

		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *chatRepository) Clear(ctx context.Context, keep int) error {
	log := logger.FromContext(ctx)

	table := models.ChatMessage{}.TableName()

	var query string
	var args []any
	var err error

	if keep <= 0 {
		query, args, err = sq.Delete(table).ToSql()
	} else {
		// keep the newest N rows, delete everything older
		query = fmt.Sprintf(
			`DELETE FROM %s WHERE id NOT IN (SELECT id FROM %s ORDER BY created_at DESC, id DESC LIMIT ?)`,
			table, table,
		)
		args = []any{keep}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "chatRepository.Clear").
			Int("keep", keep).
			Msg("failed to clear chat history")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return nil
}
