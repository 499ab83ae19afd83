package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MemoryCategoryRepo is an in-process CategoryRepository used by the demo
// backend and by tests. Returned values are copies; callers may mutate them.
type MemoryCategoryRepo struct {
	mu               sync.RWMutex
	categories       map[uuid.UUID]*models.Category
	subcategories    map[uuid.UUID]*models.Subcategory
	subSubcategories map[uuid.UUID]*models.SubSubcategory
}

func NewMemoryCategoryRepo() *MemoryCategoryRepo {
	return &MemoryCategoryRepo{
		categories:       make(map[uuid.UUID]*models.Category),
		subcategories:    make(map[uuid.UUID]*models.Subcategory),
		subSubcategories: make(map[uuid.UUID]*models.SubSubcategory),
	}
}

func copyCategory(c *models.Category) *models.Category {
	out := *c
	out.Subcategories = nil
	return &out
}

func copySubcategory(s *models.Subcategory) *models.Subcategory {
	out := *s
	out.SubSubcategories = nil
	return &out
}

func copySubSubcategory(l *models.SubSubcategory) *models.SubSubcategory {
	out := *l
	return &out
}

func sortCategories(list []*models.Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].DisplayOrder != list[j].DisplayOrder {
			return list[i].DisplayOrder < list[j].DisplayOrder
		}
		return list[i].Name < list[j].Name
	})
}

func sortSubcategories(list []*models.Subcategory) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Name < list[j].Name
	})
}

func sortSubSubcategories(list []*models.SubSubcategory) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Name < list[j].Name
	})
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, common.ErrNotFound)
}

func conflict(op, slug string) error {
	return fmt.Errorf("%s: %w: slug %q", op, common.ErrConflict, slug)
}

func (r *MemoryCategoryRepo) ListActiveCategories(ctx context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Category{}
	for _, c := range r.categories {
		if c.IsActive {
			out = append(out, copyCategory(c))
		}
	}
	sortCategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) GetActiveCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Slug == slug && c.IsActive {
			return copyCategory(c), nil
		}
	}
	return nil, notFound("get category by slug")
}

func (r *MemoryCategoryRepo) ListActiveSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Subcategory{}
	for _, s := range r.subcategories {
		if s.CategoryID == categoryID && s.IsActive {
			out = append(out, copySubcategory(s))
		}
	}
	sortSubcategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) GetActiveSubcategoryBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subcategories {
		if s.CategoryID == categoryID && s.Slug == slug && s.IsActive {
			return copySubcategory(s), nil
		}
	}
	return nil, notFound("get subcategory by slug")
}

func (r *MemoryCategoryRepo) ListActiveSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.SubSubcategory{}
	for _, l := range r.subSubcategories {
		if l.SubcategoryID == subcategoryID && l.IsActive {
			out = append(out, copySubSubcategory(l))
		}
	}
	sortSubSubcategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, copyCategory(c))
	}
	sortCategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, notFound("get category")
	}
	return copyCategory(c), nil
}

func (r *MemoryCategoryRepo) categorySlugTaken(slug string, except uuid.UUID) bool {
	for _, c := range r.categories {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (r *MemoryCategoryRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.ID]; exists || r.categorySlugTaken(category.Slug, category.ID) {
		return conflict("create category", category.Slug)
	}
	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now
	r.categories[category.ID] = copyCategory(category)
	return nil
}

func (r *MemoryCategoryRepo) UpdateCategory(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[category.ID]
	if !ok {
		return notFound("update category")
	}
	if r.categorySlugTaken(category.Slug, category.ID) {
		return conflict("update category", category.Slug)
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	r.categories[category.ID] = copyCategory(category)
	return nil
}

func (r *MemoryCategoryRepo) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return notFound("set category active")
	}
	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteCategory cascades to subcategories and their leaves.
func (r *MemoryCategoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return notFound("delete category")
	}
	delete(r.categories, id)
	for subID, s := range r.subcategories {
		if s.CategoryID == id {
			r.deleteSubcategoryLocked(subID)
		}
	}
	return nil
}

func (r *MemoryCategoryRepo) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Subcategory{}
	for _, s := range r.subcategories {
		if s.CategoryID == categoryID {
			out = append(out, copySubcategory(s))
		}
	}
	sortSubcategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) GetSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subcategories[id]
	if !ok {
		return nil, notFound("get subcategory")
	}
	return copySubcategory(s), nil
}

func (r *MemoryCategoryRepo) checkSubcategoryLocked(op string, sub *models.Subcategory) error {
	if _, ok := r.categories[sub.CategoryID]; !ok {
		return common.NewValidationError("category_id", "referenced parent does not exist")
	}
	for _, s := range r.subcategories {
		if s.CategoryID == sub.CategoryID && s.Slug == sub.Slug && s.ID != sub.ID {
			return conflict(op, sub.Slug)
		}
	}
	return nil
}

func (r *MemoryCategoryRepo) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subcategories[sub.ID]; exists {
		return conflict("create subcategory", sub.Slug)
	}
	if err := r.checkSubcategoryLocked("create subcategory", sub); err != nil {
		return err
	}
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	r.subcategories[sub.ID] = copySubcategory(sub)
	return nil
}

func (r *MemoryCategoryRepo) UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subcategories[sub.ID]
	if !ok {
		return notFound("update subcategory")
	}
	if err := r.checkSubcategoryLocked("update subcategory", sub); err != nil {
		return err
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now().UTC()
	r.subcategories[sub.ID] = copySubcategory(sub)
	return nil
}

func (r *MemoryCategoryRepo) SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subcategories[id]
	if !ok {
		return notFound("set subcategory active")
	}
	s.IsActive = active
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryCategoryRepo) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subcategories[id]; !ok {
		return notFound("delete subcategory")
	}
	r.deleteSubcategoryLocked(id)
	return nil
}

func (r *MemoryCategoryRepo) deleteSubcategoryLocked(id uuid.UUID) {
	delete(r.subcategories, id)
	for leafID, l := range r.subSubcategories {
		if l.SubcategoryID == id {
			delete(r.subSubcategories, leafID)
		}
	}
}

func (r *MemoryCategoryRepo) ListSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.SubSubcategory{}
	for _, l := range r.subSubcategories {
		if l.SubcategoryID == subcategoryID {
			out = append(out, copySubSubcategory(l))
		}
	}
	sortSubSubcategories(out)
	return out, nil
}

func (r *MemoryCategoryRepo) GetSubSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.SubSubcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.subSubcategories[id]
	if !ok {
		return nil, notFound("get sub-subcategory")
	}
	return copySubSubcategory(l), nil
}

func (r *MemoryCategoryRepo) checkSubSubcategoryLocked(op string, leaf *models.SubSubcategory) error {
	if _, ok := r.subcategories[leaf.SubcategoryID]; !ok {
		return common.NewValidationError("subcategory_id", "referenced parent does not exist")
	}
	for _, l := range r.subSubcategories {
		if l.SubcategoryID == leaf.SubcategoryID && l.Slug == leaf.Slug && l.ID != leaf.ID {
			return conflict(op, leaf.Slug)
		}
	}
	return nil
}

func (r *MemoryCategoryRepo) CreateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subSubcategories[leaf.ID]; exists {
		return conflict("create sub-subcategory", leaf.Slug)
	}
	if err := r.checkSubSubcategoryLocked("create sub-subcategory", leaf); err != nil {
		return err
	}
	now := time.Now().UTC()
	leaf.CreatedAt, leaf.UpdatedAt = now, now
	r.subSubcategories[leaf.ID] = copySubSubcategory(leaf)
	return nil
}

func (r *MemoryCategoryRepo) UpdateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.subSubcategories[leaf.ID]
	if !ok {
		return notFound("update sub-subcategory")
	}
	if err := r.checkSubSubcategoryLocked("update sub-subcategory", leaf); err != nil {
		return err
	}
	leaf.CreatedAt = existing.CreatedAt
	leaf.UpdatedAt = time.Now().UTC()
	r.subSubcategories[leaf.ID] = copySubSubcategory(leaf)
	return nil
}

func (r *MemoryCategoryRepo) SetSubSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.subSubcategories[id]
	if !ok {
		return notFound("set sub-subcategory active")
	}
	l.IsActive = active
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryCategoryRepo) DeleteSubSubcategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subSubcategories[id]; !ok {
		return notFound("delete sub-subcategory")
	}
	delete(r.subSubcategories, id)
	return nil
}

// MemoryProductRepo is an in-process ProductRepository.
type MemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*models.Product
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func copyProduct(p *models.Product) *models.Product {
	out := *p
	if p.OldPrice != nil {
		v := *p.OldPrice
		out.OldPrice = &v
	}
	return &out
}

func matchesProductFilter(p *models.Product, f *models.ProductFilter) bool {
	if !p.IsActive {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Subcategory != "" && !strings.EqualFold(p.Subcategory, f.Subcategory) {
		return false
	}
	if f.IsNew && !p.IsNew {
		return false
	}
	if f.IsFeatured && !p.IsFeatured {
		return false
	}
	if f.IsLimitedEdition && !p.IsLimitedEdition {
		return false
	}
	if f.OnSale && !p.OnSale() {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Category), needle) {
			return false
		}
	}
	return true
}

// productLess mirrors productOrderBy.
func productLess(sortKey string, a, b *models.Product) bool {
	switch sortKey {
	case models.SortFeatured:
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
	case models.SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case models.SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case models.SortRating:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func (r *MemoryProductRepo) Query(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error) {
	filter.Normalize()

	r.mu.RLock()
	matched := []*models.Product{}
	for _, p := range r.products {
		if matchesProductFilter(p, filter) {
			matched = append(matched, copyProduct(p))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return productLess(filter.Sort, matched[i], matched[j])
	})

	page := &models.ProductPage{Items: []*models.Product{}, Total: len(matched)}
	start := filter.Offset()
	if start >= len(matched) {
		return page, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[start:end]
	return page, nil
}

func (r *MemoryProductRepo) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug && p.IsActive {
			return copyProduct(p), nil
		}
	}
	return nil, notFound("get product by slug")
}

func (r *MemoryProductRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	r.mu.RLock()
	all := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, copyProduct(p))
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return productLess(models.SortNewest, all[i], all[j])
	})
	if offset >= len(all) {
		return []*models.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, notFound("get product")
	}
	return copyProduct(p), nil
}

func (r *MemoryProductRepo) slugTakenLocked(slug string, except uuid.UUID) bool {
	for _, p := range r.products {
		if p.Slug == slug && p.ID != except {
			return true
		}
	}
	return false
}

func (r *MemoryProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists || r.slugTakenLocked(product.Slug, product.ID) {
		return conflict("create product", product.Slug)
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = copyProduct(product)
	return nil
}

func (r *MemoryProductRepo) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return notFound("update product")
	}
	if r.slugTakenLocked(product.Slug, product.ID) {
		return conflict("update product", product.Slug)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = copyProduct(product)
	return nil
}

func (r *MemoryProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return notFound("set product active")
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return notFound("delete product")
	}
	delete(r.products, id)
	return nil
}

// MemoryContentRepo is an in-process ContentRepository.
type MemoryContentRepo struct {
	mu    sync.RWMutex
	pages map[string]*models.PageContent
}

func NewMemoryContentRepo() *MemoryContentRepo {
	return &MemoryContentRepo{pages: make(map[string]*models.PageContent)}
}

func (r *MemoryContentRepo) Get(ctx context.Context, pageKey string) (*models.PageContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.pages[pageKey]
	if !ok {
		return nil, notFound("get page content")
	}
	out := *c
	return &out, nil
}

func (r *MemoryContentRepo) Upsert(ctx context.Context, content *models.PageContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	content.UpdatedAt = &now
	if content.Items == nil {
		content.Items = []map[string]any{}
	}
	stored := *content
	r.pages[content.PageKey] = &stored
	return nil
}

// MemoryActivityLogRepo keeps the most recent entries in memory.
type MemoryActivityLogRepo struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
}

func NewMemoryActivityLogRepo() *MemoryActivityLogRepo {
	return &MemoryActivityLogRepo{}
}

func (r *MemoryActivityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *MemoryActivityLogRepo) ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.ActivityLog{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := *r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

var (
	_ CategoryRepository    = (*MemoryCategoryRepo)(nil)
	_ ProductRepository     = (*MemoryProductRepo)(nil)
	_ ContentRepository     = (*MemoryContentRepo)(nil)
	_ ActivityLogRepository = (*MemoryActivityLogRepo)(nil)
)
