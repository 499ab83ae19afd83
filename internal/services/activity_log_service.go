package services

import (
	"context"
	"strings"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

type ActivityLogService interface {
	LogActivity(ctx context.Context, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

type activityLogService struct {
	activityRepo repositories.ActivityLogRepository
}

func NewActivityLogService(activityRepo repositories.ActivityLogRepository) ActivityLogService {
	return &activityLogService{activityRepo: activityRepo}
}

// LogActivity fills in ID and timestamp and stores the entry.
func (s *activityLogService) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	if strings.TrimSpace(entry.Method) == "" {
		return common.NewValidationError("method", "is required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.Error) > 500 {
		entry.Error = entry.Error[:500]
	}
	return s.activityRepo.Create(ctx, entry)
}

func (s *activityLogService) ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.activityRepo.ListRecent(ctx, limit)
}
