package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

var pageKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type ContentService interface {
	// Get returns stored content, or an empty placeholder for unknown keys.
	Get(ctx context.Context, pageKey string) (*models.PageContent, error)
	Upsert(ctx context.Context, content *models.PageContent) error
}

type contentService struct {
	contentRepo  repositories.ContentRepository
	cacheService caching.CacheService
	cacheTTL     time.Duration
}

func NewContentService(contentRepo repositories.ContentRepository, cacheService caching.CacheService, cacheTTL time.Duration) ContentService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &contentService{contentRepo: contentRepo, cacheService: cacheService, cacheTTL: cacheTTL}
}

func validatePageKey(pageKey string) error {
	if !pageKeyPattern.MatchString(pageKey) {
		return common.NewValidationError("page_key", "must be lower-case letters, digits, '-' or '_'")
	}
	return nil
}

func (s *contentService) Get(ctx context.Context, pageKey string) (*models.PageContent, error) {
	if err := validatePageKey(pageKey); err != nil {
		return nil, err
	}

	if cached, err := s.cacheService.GetContent(ctx, pageKey); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: cache error for content %s: %v", pageKey, err)
	}

	content, err := s.contentRepo.Get(ctx, pageKey)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return models.EmptyPageContent(pageKey), nil
	case err != nil:
		log.Printf("WARN: catalog degraded op=content/%s source=empty err=%v", pageKey, err)
		return models.EmptyPageContent(pageKey), nil
	}
	if content.Items == nil {
		content.Items = []map[string]any{}
	}

	if cacheErr := s.cacheService.SetContent(ctx, content, s.cacheTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache content %s: %v", pageKey, cacheErr)
	}
	return content, nil
}

func (s *contentService) Upsert(ctx context.Context, content *models.PageContent) error {
	if err := validatePageKey(content.PageKey); err != nil {
		return err
	}
	if content.Items == nil {
		content.Items = []map[string]any{}
	}
	if err := s.contentRepo.Upsert(ctx, content); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteContent(ctx, content.PageKey); cacheErr != nil {
		log.Printf("WARN: failed to invalidate content %s: %v", content.PageKey, cacheErr)
	}
	return nil
}
