package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/fallback"
	"storefront/internal/menu"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"golang.org/x/sync/errgroup"
)

// HierarchyService assembles the three-level category tree. Read methods
// degrade instead of failing: when the store cannot be reached they serve
// the last cached tree, then the static fallback, and say so in Source.
type HierarchyService interface {
	// Assemble builds the tree straight from the store. categorySlug scopes
	// it to one category. Store failures are reported as ErrUnavailable and
	// an unknown or inactive scope as ErrNotFound.
	Assemble(ctx context.Context, categorySlug string) ([]*models.Category, error)

	Tree(ctx context.Context) (*models.Hierarchy, error)
	Subtree(ctx context.Context, categorySlug string) (*models.Hierarchy, error)
	Categories(ctx context.Context) (*models.Hierarchy, error)
	Menu(ctx context.Context, categorySlug, subcategorySlug string) (*MenuResult, error)

	// Refresh rebuilds the full tree and rewrites both cache copies.
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context)
}

// MenuResult is a grouped leaf layout plus the source of the tree it was built from.
type MenuResult struct {
	menu.Layout
	Source models.HierarchySource `json:"source"`
}

// HierarchyOptions tunes the assembler. Zero values take defaults.
type HierarchyOptions struct {
	Timeout     time.Duration // per-request budget for the live path
	CacheTTL    time.Duration // lifetime of the fresh cache copy
	Concurrency int           // parallel category fetches
}

func (o HierarchyOptions) withDefaults() HierarchyOptions {
	if o.Timeout <= 0 {
		o.Timeout = 3 * time.Second
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

type hierarchyService struct {
	categoryRepo repositories.CategoryReader
	cacheService caching.CacheService
	fallback     *fallback.Dataset
	policy       *menu.Policy
	opts         HierarchyOptions
}

func NewHierarchyService(categoryRepo repositories.CategoryReader, cacheService caching.CacheService, dataset *fallback.Dataset, policy *menu.Policy, opts HierarchyOptions) HierarchyService {
	if policy == nil {
		policy = menu.NewPolicy(nil, nil)
	}
	return &hierarchyService{
		categoryRepo: categoryRepo,
		cacheService: cacheService,
		fallback:     dataset,
		policy:       policy,
		opts:         opts.withDefaults(),
	}
}

func storeError(op string, err error) error {
	if errors.Is(err, common.ErrUnavailable) || errors.Is(err, common.ErrNotFound) {
		return err
	}
	return common.Unavailable(op, err)
}

func (s *hierarchyService) Assemble(ctx context.Context, categorySlug string) ([]*models.Category, error) {
	var roots []*models.Category
	if categorySlug != "" {
		category, err := s.categoryRepo.GetActiveCategoryBySlug(ctx, categorySlug)
		if err != nil {
			return nil, storeError("get category", err)
		}
		roots = []*models.Category{category}
	} else {
		list, err := s.categoryRepo.ListActiveCategories(ctx)
		if err != nil {
			return nil, storeError("list categories", err)
		}
		roots = list
	}

	// Each category's subtree is fetched independently; results land by
	// index so completion order does not matter.
	tree := make([]*models.Category, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			node, err := s.loadSubtree(gctx, root)
			if err != nil {
				return err
			}
			tree[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError("assemble hierarchy", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, common.Unavailable("assemble hierarchy", err)
	}

	sortTree(tree)
	return tree, nil
}

func (s *hierarchyService) loadSubtree(ctx context.Context, root *models.Category) (*models.Category, error) {
	node := *root
	subs, err := s.categoryRepo.ListActiveSubcategories(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	node.Subcategories = make([]*models.Subcategory, 0, len(subs))
	for _, sub := range subs {
		leaves, err := s.categoryRepo.ListActiveSubSubcategories(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.SubSubcategories = leaves
		node.Subcategories = append(node.Subcategories, sub)
	}
	return &node, nil
}

// sortTree puts every level in (order, name) order.
func sortTree(tree []*models.Category) {
	sort.SliceStable(tree, func(i, j int) bool {
		if tree[i].DisplayOrder != tree[j].DisplayOrder {
			return tree[i].DisplayOrder < tree[j].DisplayOrder
		}
		return tree[i].Name < tree[j].Name
	})
	for _, c := range tree {
		subs := c.Subcategories
		sort.SliceStable(subs, func(i, j int) bool {
			if subs[i].SortOrder != subs[j].SortOrder {
				return subs[i].SortOrder < subs[j].SortOrder
			}
			return subs[i].Name < subs[j].Name
		})
		for _, sub := range subs {
			leaves := sub.SubSubcategories
			sort.SliceStable(leaves, func(i, j int) bool {
				if leaves[i].SortOrder != leaves[j].SortOrder {
					return leaves[i].SortOrder < leaves[j].SortOrder
				}
				return leaves[i].Name < leaves[j].Name
			})
		}
	}
}

func (s *hierarchyService) Tree(ctx context.Context) (*models.Hierarchy, error) {
	return s.load(ctx, "")
}

func (s *hierarchyService) Subtree(ctx context.Context, categorySlug string) (*models.Hierarchy, error) {
	if categorySlug == "" {
		return nil, common.NewValidationError("category", "is required")
	}
	return s.load(ctx, categorySlug)
}

// Categories returns the top level only, with the same degradation rules as Tree.
func (s *hierarchyService) Categories(ctx context.Context) (*models.Hierarchy, error) {
	h, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	flat := make([]*models.Category, 0, len(h.Categories))
	for _, c := range h.Categories {
		top := *c
		top.Subcategories = nil
		flat = append(flat, &top)
	}
	return &models.Hierarchy{Categories: flat, Source: h.Source}, nil
}

func (s *hierarchyService) load(ctx context.Context, scope string) (*models.Hierarchy, error) {
	if tree, err := s.cacheService.GetHierarchy(ctx, scope); tree != nil {
		return &models.Hierarchy{Categories: tree, Source: models.SourceLive}, nil
	} else if err != nil {
		log.Printf("WARN: hierarchy cache read failed for %q: %v", scope, err)
	}

	liveCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	tree, err := s.Assemble(liveCtx, scope)
	if err == nil {
		if cacheErr := s.cacheService.SetHierarchy(ctx, scope, tree, s.opts.CacheTTL); cacheErr != nil {
			log.Printf("WARN: failed to cache hierarchy %q: %v", scope, cacheErr)
		}
		return &models.Hierarchy{Categories: tree, Source: models.SourceLive}, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return s.degraded(ctx, scope, err), nil
}

// degraded serves the last cached tree, else the static fallback. It never fails.
func (s *hierarchyService) degraded(ctx context.Context, scope string, cause error) *models.Hierarchy {
	op := "hierarchy"
	if scope != "" {
		op = "hierarchy/" + scope
	}

	if tree := s.staleTree(ctx, scope); tree != nil {
		log.Printf("WARN: catalog degraded op=%s source=%s err=%v", op, models.SourceCache, cause)
		return &models.Hierarchy{Categories: tree, Source: models.SourceCache}
	}

	log.Printf("WARN: catalog degraded op=%s source=%s err=%v", op, models.SourceFallback, cause)
	if s.fallback == nil {
		return &models.Hierarchy{Categories: []*models.Category{}, Source: models.SourceFallback}
	}
	if scope == "" {
		return &models.Hierarchy{Categories: s.fallback.Tree(), Source: models.SourceFallback}
	}
	if c, ok := s.fallback.Subtree(scope); ok {
		return &models.Hierarchy{Categories: []*models.Category{c}, Source: models.SourceFallback}
	}
	return &models.Hierarchy{Categories: []*models.Category{}, Source: models.SourceFallback}
}

// staleTree returns the last-known-good copy for scope. A scoped request
// may also be answered from the stale full tree.
func (s *hierarchyService) staleTree(ctx context.Context, scope string) []*models.Category {
	tree, err := s.cacheService.GetStaleHierarchy(ctx, scope)
	if err != nil {
		log.Printf("WARN: stale hierarchy read failed for %q: %v", scope, err)
	}
	if tree != nil || scope == "" {
		return tree
	}

	full, err := s.cacheService.GetStaleHierarchy(ctx, "")
	if err != nil || full == nil {
		return nil
	}
	for _, c := range full {
		if c.Slug == scope {
			return []*models.Category{c}
		}
	}
	return nil
}

func (s *hierarchyService) Menu(ctx context.Context, categorySlug, subcategorySlug string) (*MenuResult, error) {
	h, err := s.Subtree(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	for _, c := range h.Categories {
		for _, sub := range c.Subcategories {
			if sub.Slug == subcategorySlug {
				return &MenuResult{Layout: s.policy.Build(sub, sub.SubSubcategories), Source: h.Source}, nil
			}
		}
	}
	return nil, fmt.Errorf("subcategory %q in %q: %w", subcategorySlug, categorySlug, common.ErrNotFound)
}

func (s *hierarchyService) Refresh(ctx context.Context) error {
	liveCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	tree, err := s.Assemble(liveCtx, "")
	if err != nil {
		return err
	}
	s.Invalidate(ctx)
	if err := s.cacheService.SetHierarchy(ctx, "", tree, s.opts.CacheTTL); err != nil {
		return fmt.Errorf("cache hierarchy: %w", err)
	}
	log.Printf("DEBUG: hierarchy refreshed with %d categories", len(tree))
	return nil
}

func (s *hierarchyService) Invalidate(ctx context.Context) {
	if err := s.cacheService.InvalidateHierarchy(ctx); err != nil {
		log.Printf("WARN: failed to invalidate hierarchy cache: %v", err)
	}
}
