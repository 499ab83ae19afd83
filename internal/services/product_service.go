package services

import (
	"context"
	"log"
	"strings"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService is the read side of the product catalog.
type ProductService interface {
	// Query never fails. When the store cannot answer, it returns an empty
	// page with Degraded set.
	Query(ctx context.Context, filter models.ProductFilter) *ProductListing
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// ProductListing is one page of products and the paging it was computed with.
type ProductListing struct {
	Products   []*models.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	Degraded   bool              `json:"-"`
}

type productService struct {
	productRepo  repositories.ProductRepository
	cacheService caching.CacheService
	timeout      time.Duration
	cacheTTL     time.Duration
}

func NewProductService(productRepo repositories.ProductRepository, cacheService caching.CacheService, timeout, cacheTTL time.Duration) ProductService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &productService{
		productRepo:  productRepo,
		cacheService: cacheService,
		timeout:      timeout,
		cacheTTL:     cacheTTL,
	}
}

func (s *productService) Query(ctx context.Context, filter models.ProductFilter) *ProductListing {
	filter.Normalize()
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Subcategory = strings.TrimSpace(filter.Subcategory)

	listing := &ProductListing{
		Products: []*models.Product{},
		Page:     filter.Page,
		Limit:    filter.Limit,
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.productRepo.Query(qctx, &filter)
	if err != nil {
		log.Printf("WARN: catalog degraded op=products source=empty err=%v", err)
		listing.Degraded = true
		return listing
	}

	if page.Items != nil {
		listing.Products = page.Items
	}
	listing.Total = page.Total
	listing.TotalPages = (page.Total + filter.Limit - 1) / filter.Limit
	return listing
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, common.NewValidationError("slug", "is required")
	}

	// Try to get from cache first
	if cached, err := s.cacheService.GetProductBySlug(ctx, slug); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors shouldn't fail the read
		log.Printf("WARN: cache error for product %s: %v", slug, err)
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.productRepo.GetActiveBySlug(qctx, slug)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetProductBySlug(ctx, product, s.cacheTTL); cacheErr != nil {
		log.Printf("WARN: failed to cache product %s: %v", slug, cacheErr)
	}
	return product, nil
}
