package fallback

import (
	"context"
	"errors"
	"log"

	"storefront/internal/common"
	"storefront/internal/repositories"
)

// SeedResult counts rows written and rows skipped because they already existed.
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func (r *SeedResult) record(kind, slug string, err error) error {
	switch {
	case err == nil:
		r.Created++
		return nil
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrValidation):
		log.Printf("DEBUG: seed skipped %s %q: %v", kind, slug, err)
		r.Skipped++
		return nil
	default:
		return err
	}
}

// Seed writes the dataset through the repositories. Rows that already exist
// are skipped, so running it twice is harmless.
func Seed(ctx context.Context, d *Dataset, categories repositories.CategoryRepository, products repositories.ProductRepository) (*SeedResult, error) {
	result := &SeedResult{}

	for _, c := range d.Tree() {
		if err := result.record("category", c.Slug, categories.CreateCategory(ctx, c)); err != nil {
			return result, err
		}
		for _, s := range c.Subcategories {
			if err := result.record("subcategory", s.Slug, categories.CreateSubcategory(ctx, s)); err != nil {
				return result, err
			}
			for _, l := range s.SubSubcategories {
				if err := result.record("sub-subcategory", l.Slug, categories.CreateSubSubcategory(ctx, l)); err != nil {
					return result, err
				}
			}
		}
	}

	if products != nil {
		for _, p := range d.Products() {
			if err := result.record("product", p.Slug, products.Create(ctx, p)); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}
