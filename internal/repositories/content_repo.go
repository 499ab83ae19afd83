package repositories

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"
)

type ContentRepository interface {
	Get(ctx context.Context, pageKey string) (*models.PageContent, error)
	Upsert(ctx context.Context, content *models.PageContent) error
}

type contentRepo struct {
	db DB
}

func NewContentRepo(db DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) Get(ctx context.Context, pageKey string) (*models.PageContent, error) {
	query := `
		SELECT page_key, COALESCE(title, ''), COALESCE(subtitle, ''), items, updated_at
		FROM page_content
		WHERE page_key = $1
	`
	content := &models.PageContent{}
	var rawItems []byte
	var updatedAt time.Time
	err := r.db.QueryRow(ctx, query, pageKey).Scan(&content.PageKey, &content.Title, &content.Subtitle, &rawItems, &updatedAt)
	if err != nil {
		return nil, translateError("get page content", err)
	}
	content.UpdatedAt = &updatedAt

	content.Items = []map[string]any{}
	if len(rawItems) > 0 {
		if err := json.Unmarshal(rawItems, &content.Items); err != nil {
			return nil, common.Unavailable("decode page content", err)
		}
	}
	return content, nil
}

func (r *contentRepo) Upsert(ctx context.Context, content *models.PageContent) error {
	items := content.Items
	if items == nil {
		items = []map[string]any{}
	}
	rawItems, err := json.Marshal(items)
	if err != nil {
		return common.NewValidationError("items", "must be a JSON array of objects")
	}

	query := `
		INSERT INTO page_content (page_key, title, subtitle, items, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (page_key) DO UPDATE
		SET title = EXCLUDED.title, subtitle = EXCLUDED.subtitle, items = EXCLUDED.items, updated_at = NOW()
		RETURNING updated_at
	`
	var updatedAt time.Time
	if err := r.db.QueryRow(ctx, query, content.PageKey, content.Title, content.Subtitle, string(rawItems)).Scan(&updatedAt); err != nil {
		return translateError("upsert page content", err)
	}
	content.UpdatedAt = &updatedAt
	return nil
}
