package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

// CatalogAdminService owns catalog writes. Every successful write drops the
// cached hierarchy; product writes also drop cached product lookups.
type CatalogAdminService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, in *models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in *models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, hard bool) error

	ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error)
	CreateSubcategory(ctx context.Context, in *models.SubcategoryInput) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id uuid.UUID, in *models.SubcategoryInput) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID, hard bool) error

	ListSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error)
	CreateSubSubcategory(ctx context.Context, in *models.SubSubcategoryInput) (*models.SubSubcategory, error)
	UpdateSubSubcategory(ctx context.Context, id uuid.UUID, in *models.SubSubcategoryInput) (*models.SubSubcategory, error)
	DeleteSubSubcategory(ctx context.Context, id uuid.UUID, hard bool) error

	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	CreateProduct(ctx context.Context, in *models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in *models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, hard bool) error
}

type catalogAdminService struct {
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
	hierarchy    HierarchyService
	cacheService caching.CacheService
}

func NewCatalogAdminService(categoryRepo repositories.CategoryRepository, productRepo repositories.ProductRepository, hierarchy HierarchyService, cacheService caching.CacheService) CatalogAdminService {
	return &catalogAdminService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		hierarchy:    hierarchy,
		cacheService: cacheService,
	}
}

// resolveSlug returns the explicit slug, normalized, or one derived from name.
func resolveSlug(slug, name string) (string, error) {
	source := slug
	if strings.TrimSpace(source) == "" {
		source = name
	}
	out := common.Slugify(source)
	if out == "" {
		return "", common.NewValidationError("slug", "must contain at least one letter or digit")
	}
	return out, nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "is required")
	}
	return name, nil
}

func activeOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (s *catalogAdminService) afterTreeWrite(ctx context.Context) {
	s.hierarchy.Invalidate(ctx)
}

func (s *catalogAdminService) afterProductWrite(ctx context.Context, slugs ...string) {
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := s.cacheService.DeleteProductBySlug(ctx, slug); err != nil {
			log.Printf("WARN: failed to invalidate product %s: %v", slug, err)
		}
	}
	s.hierarchy.Invalidate(ctx)
}

// Categories

func (s *catalogAdminService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.ListCategories(ctx)
}

func (s *catalogAdminService) applyCategory(c *models.Category, in *models.CategoryInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	c.Name, c.Slug = name, slug
	c.Description = strings.TrimSpace(in.Description)
	c.Image = strings.TrimSpace(in.Image)
	c.DisplayOrder = in.DisplayOrder
	c.IsActive = activeOr(in.IsActive, c.IsActive)
	return nil
}

func (s *catalogAdminService) CreateCategory(ctx context.Context, in *models.CategoryInput) (*models.Category, error) {
	c := &models.Category{ID: uuid.New(), IsActive: true}
	if err := s.applyCategory(c, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return c, nil
}

func (s *catalogAdminService) UpdateCategory(ctx context.Context, id uuid.UUID, in *models.CategoryInput) (*models.Category, error) {
	c, err := s.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCategory(c, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return c, nil
}

// DeleteCategory deactivates by default. A hard delete removes the category
// and everything beneath it.
func (s *catalogAdminService) DeleteCategory(ctx context.Context, id uuid.UUID, hard bool) error {
	var err error
	if hard {
		err = s.categoryRepo.DeleteCategory(ctx, id)
	} else {
		err = s.categoryRepo.SetCategoryActive(ctx, id, false)
	}
	if err != nil {
		return err
	}
	s.afterTreeWrite(ctx)
	return nil
}

// Subcategories

func (s *catalogAdminService) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error) {
	return s.categoryRepo.ListSubcategories(ctx, categoryID)
}

func (s *catalogAdminService) applySubcategory(sub *models.Subcategory, in *models.SubcategoryInput) error {
	if in.CategoryID == uuid.Nil {
		return common.NewValidationError("category_id", "is required")
	}
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	sub.CategoryID = in.CategoryID
	sub.Name, sub.Slug = name, slug
	sub.Description = strings.TrimSpace(in.Description)
	sub.Image = strings.TrimSpace(in.Image)
	sub.SortOrder = in.SortOrder
	sub.IsActive = activeOr(in.IsActive, sub.IsActive)
	return nil
}

func (s *catalogAdminService) CreateSubcategory(ctx context.Context, in *models.SubcategoryInput) (*models.Subcategory, error) {
	sub := &models.Subcategory{ID: uuid.New(), IsActive: true}
	if err := s.applySubcategory(sub, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return sub, nil
}

func (s *catalogAdminService) UpdateSubcategory(ctx context.Context, id uuid.UUID, in *models.SubcategoryInput) (*models.Subcategory, error) {
	sub, err := s.categoryRepo.GetSubcategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applySubcategory(sub, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.UpdateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return sub, nil
}

func (s *catalogAdminService) DeleteSubcategory(ctx context.Context, id uuid.UUID, hard bool) error {
	var err error
	if hard {
		err = s.categoryRepo.DeleteSubcategory(ctx, id)
	} else {
		err = s.categoryRepo.SetSubcategoryActive(ctx, id, false)
	}
	if err != nil {
		return err
	}
	s.afterTreeWrite(ctx)
	return nil
}

// Sub-subcategories

func (s *catalogAdminService) ListSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error) {
	return s.categoryRepo.ListSubSubcategories(ctx, subcategoryID)
}

func (s *catalogAdminService) applySubSubcategory(leaf *models.SubSubcategory, in *models.SubSubcategoryInput) error {
	if in.SubcategoryID == uuid.Nil {
		return common.NewValidationError("subcategory_id", "is required")
	}
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	leaf.SubcategoryID = in.SubcategoryID
	leaf.Name, leaf.Slug = name, slug
	leaf.Description = strings.TrimSpace(in.Description)
	leaf.Image = strings.TrimSpace(in.Image)
	leaf.SortOrder = in.SortOrder
	leaf.IsActive = activeOr(in.IsActive, leaf.IsActive)
	return nil
}

func (s *catalogAdminService) CreateSubSubcategory(ctx context.Context, in *models.SubSubcategoryInput) (*models.SubSubcategory, error) {
	leaf := &models.SubSubcategory{ID: uuid.New(), IsActive: true}
	if err := s.applySubSubcategory(leaf, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.CreateSubSubcategory(ctx, leaf); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return leaf, nil
}

func (s *catalogAdminService) UpdateSubSubcategory(ctx context.Context, id uuid.UUID, in *models.SubSubcategoryInput) (*models.SubSubcategory, error) {
	leaf, err := s.categoryRepo.GetSubSubcategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applySubSubcategory(leaf, in); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.UpdateSubSubcategory(ctx, leaf); err != nil {
		return nil, err
	}
	s.afterTreeWrite(ctx)
	return leaf, nil
}

func (s *catalogAdminService) DeleteSubSubcategory(ctx context.Context, id uuid.UUID, hard bool) error {
	var err error
	if hard {
		err = s.categoryRepo.DeleteSubSubcategory(ctx, id)
	} else {
		err = s.categoryRepo.SetSubSubcategoryActive(ctx, id, false)
	}
	if err != nil {
		return err
	}
	s.afterTreeWrite(ctx)
	return nil
}

// Products

func (s *catalogAdminService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.List(ctx, limit, offset)
}

func (s *catalogAdminService) applyProduct(p *models.Product, in *models.ProductInput) error {
	name, err := requireName(in.Name)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return common.NewValidationError("category", "is required")
	}
	if in.Price < 0 {
		return common.NewValidationError("price", "cannot be negative")
	}
	if in.OldPrice != nil && *in.OldPrice < 0 {
		return common.NewValidationError("old_price", "cannot be negative")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return common.NewValidationError("rating", "must be between 0 and 5")
	}

	p.Name, p.Slug = name, slug
	p.Description = strings.TrimSpace(in.Description)
	p.Category = category
	p.Subcategory = strings.TrimSpace(in.Subcategory)
	p.Price = in.Price
	p.OldPrice = in.OldPrice
	p.Image = strings.TrimSpace(in.Image)
	p.Rating = in.Rating
	p.IsActive = activeOr(in.IsActive, p.IsActive)
	p.IsNew = in.IsNew
	p.IsFeatured = in.IsFeatured
	p.IsLimitedEdition = in.IsLimitedEdition
	p.IsBlueMondaySale = in.IsBlueMondaySale
	return nil
}

func (s *catalogAdminService) CreateProduct(ctx context.Context, in *models.ProductInput) (*models.Product, error) {
	p := &models.Product{ID: uuid.New(), IsActive: true}
	if err := s.applyProduct(p, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.afterProductWrite(ctx, p.Slug)
	return p, nil
}

func (s *catalogAdminService) UpdateProduct(ctx context.Context, id uuid.UUID, in *models.ProductInput) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := p.Slug
	if err := s.applyProduct(p, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.afterProductWrite(ctx, oldSlug, p.Slug)
	return p, nil
}

func (s *catalogAdminService) DeleteProduct(ctx context.Context, id uuid.UUID, hard bool) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if hard {
		err = s.productRepo.Delete(ctx, id)
	} else {
		err = s.productRepo.SetActive(ctx, id, false)
	}
	if err != nil {
		return fmt.Errorf("delete product %s: %w", p.Slug, err)
	}
	s.afterProductWrite(ctx, p.Slug)
	return nil
}
