package services

import (
	"context"
	"testing"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingContentRepo struct{}

func (failingContentRepo) Get(context.Context, string) (*models.PageContent, error) {
	return nil, common.Unavailable("get page content", errStoreDown)
}

func (failingContentRepo) Upsert(context.Context, *models.PageContent) error {
	return common.Unavailable("upsert page content", errStoreDown)
}

func TestContentService_UnknownKeyReturnsPlaceholder(t *testing.T) {
	svc := NewContentService(repositories.NewMemoryContentRepo(), caching.NewMemoryCache(), 0)

	content, err := svc.Get(context.Background(), "about")

	require.NoError(t, err)
	assert.Equal(t, "about", content.PageKey)
	assert.Empty(t, content.Title)
	assert.Empty(t, content.Subtitle)
	assert.NotNil(t, content.Items)
	assert.Empty(t, content.Items)
}

func TestContentService_StoreFailureReturnsPlaceholder(t *testing.T) {
	svc := NewContentService(failingContentRepo{}, caching.NewMemoryCache(), 0)

	content, err := svc.Get(context.Background(), "faq")

	require.NoError(t, err)
	assert.Equal(t, "faq", content.PageKey)
	assert.NotNil(t, content.Items)
}

func TestContentService_UpsertThenGet(t *testing.T) {
	ctx := context.Background()
	cache := caching.NewMemoryCache()
	svc := NewContentService(repositories.NewMemoryContentRepo(), cache, 0)

	// Prime the cache with the placeholder path, then overwrite.
	_, err := svc.Get(ctx, "home")
	require.NoError(t, err)

	err = svc.Upsert(ctx, &models.PageContent{
		PageKey: "home",
		Title:   "Welcome",
		Items:   []map[string]any{{"heading": "New arrivals"}},
	})
	require.NoError(t, err)

	content, err := svc.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", content.Title)
	require.Len(t, content.Items, 1)
	assert.Equal(t, "New arrivals", content.Items[0]["heading"])

	cached, err := cache.GetContent(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Welcome", cached.Title)
}

func TestContentService_RejectsBadPageKey(t *testing.T) {
	svc := NewContentService(repositories.NewMemoryContentRepo(), caching.NewMemoryCache(), 0)

	for _, key := range []string{"", "About", "../etc", "has space"} {
		_, err := svc.Get(context.Background(), key)
		assert.ErrorIs(t, err, common.ErrValidation, key)

		err = svc.Upsert(context.Background(), &models.PageContent{PageKey: key})
		assert.ErrorIs(t, err, common.ErrValidation, key)
	}
}

func TestActivityLogService_LogAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewActivityLogService(repositories.NewMemoryActivityLogRepo())

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, svc.LogActivity(ctx, &models.ActivityLog{Actor: "admin-1", Method: "POST", Route: "/api/admin/categories", StatusCode: 201}))
	require.NoError(t, svc.LogActivity(ctx, &models.ActivityLog{Actor: "admin-1", Method: "DELETE", Route: "/api/admin/products/:id", StatusCode: 500, Error: string(long)}))

	entries, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "DELETE", entries[0].Method)
	assert.Len(t, entries[0].Error, 500)
	assert.False(t, entries[0].CreatedAt.IsZero())

	one, err := svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	err = svc.LogActivity(ctx, &models.ActivityLog{Actor: "admin-1"})
	assert.ErrorIs(t, err, common.ErrValidation)
}
