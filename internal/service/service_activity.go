package service

import (
	"context"
	"time"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

type activityService struct {
	activity store.ActivityRepository
	uuid     *utils.UUIDGenerator
	now      clock

	logger *logger.Logger
}

func NewActivityService(activity store.ActivityRepository, logger *logger.Logger) ActivityService {
	return &activityService{
		activity: activity,
		uuid:     utils.NewUUIDGenerator(),
		now:      time.Now,
		logger:   logger,
	}
}

// Record appends an audit entry. Failures are logged and swallowed: the
// audit log is observability, never a reason to fail the action it records.
func (s *activityService) Record(ctx context.Context, action, details string) {
	entry := models.ActivityEntry{
		ID:        s.uuid.Generate(),
		Action:    action,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *activityService) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	return s.activity.List(ctx, limit)
}
