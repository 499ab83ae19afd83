package repositories

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

type activityLogRepo struct {
	db DB
}

func NewActivityLogRepo(db DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_logs (id, actor, method, route, path, status_code, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.Actor, entry.Method, entry.Route, entry.Path,
		entry.StatusCode, entry.Error, entry.CreatedAt)
	return translateError("create activity log", err)
}

func (r *activityLogRepo) ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, actor, method, route, path, status_code, COALESCE(error, ''), created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	return collect("list activity logs", rows, err, func(row pgx.Row) (*models.ActivityLog, error) {
		e := &models.ActivityLog{}
		if err := row.Scan(&e.ID, &e.Actor, &e.Method, &e.Route, &e.Path, &e.StatusCode, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		return e, nil
	})
}
