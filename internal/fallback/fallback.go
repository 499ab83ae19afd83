// Package fallback holds the static catalog served when the live hierarchy
// is unreachable. The same data seeds the in-memory demo backend.
package fallback

import (
	_ "embed"
	"fmt"
	"sort"
	"time"

	"storefront/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

//go:embed tree.toml
var embeddedTree string

// namespace derives stable IDs from slugs so repeated loads and seeds agree.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront/fallback"))

type fileItem struct {
	Name        string `toml:"name"`
	Slug        string `toml:"slug"`
	Description string `toml:"description"`
	Image       string `toml:"image"`
	SortOrder   int    `toml:"sort_order"`
}

type fileSubcategory struct {
	Name        string     `toml:"name"`
	Slug        string     `toml:"slug"`
	Description string     `toml:"description"`
	Image       string     `toml:"image"`
	SortOrder   int        `toml:"sort_order"`
	Items       []fileItem `toml:"item"`
}

type fileCategory struct {
	Name          string            `toml:"name"`
	Slug          string            `toml:"slug"`
	Description   string            `toml:"description"`
	Image         string            `toml:"image"`
	DisplayOrder  int               `toml:"display_order"`
	Subcategories []fileSubcategory `toml:"subcategory"`
}

type fileProduct struct {
	Name             string    `toml:"name"`
	Slug             string    `toml:"slug"`
	Description      string    `toml:"description"`
	Category         string    `toml:"category"`
	Subcategory      string    `toml:"subcategory"`
	Price            float64   `toml:"price"`
	OldPrice         *float64  `toml:"old_price"`
	Image            string    `toml:"image"`
	Rating           float64   `toml:"rating"`
	IsNew            bool      `toml:"is_new"`
	IsFeatured       bool      `toml:"is_featured"`
	IsLimitedEdition bool      `toml:"is_limited_edition"`
	IsBlueMondaySale bool      `toml:"is_blue_monday_sale"`
	CreatedAt        time.Time `toml:"created_at"`
}

type treeFile struct {
	Categories []fileCategory `toml:"category"`
	Products   []fileProduct  `toml:"product"`
}

// Dataset is an immutable, ordered catalog. Accessors return deep copies.
type Dataset struct {
	categories []*models.Category
	products   []*models.Product
}

// Default parses the tree compiled into the binary.
func Default() (*Dataset, error) {
	var f treeFile
	if _, err := toml.Decode(embeddedTree, &f); err != nil {
		return nil, fmt.Errorf("failed to decode embedded fallback tree: %w", err)
	}
	return build(&f)
}

// Load reads a fallback tree from path, or the embedded tree when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	var f treeFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to load fallback tree %s: %w", path, err)
	}
	return build(&f)
}

func build(f *treeFile) (*Dataset, error) {
	d := &Dataset{}
	categorySlugs := map[string]bool{}

	for _, fc := range f.Categories {
		if fc.Name == "" || fc.Slug == "" {
			return nil, fmt.Errorf("fallback category needs name and slug (got %q/%q)", fc.Name, fc.Slug)
		}
		if categorySlugs[fc.Slug] {
			return nil, fmt.Errorf("duplicate fallback category slug %q", fc.Slug)
		}
		categorySlugs[fc.Slug] = true

		category := &models.Category{
			ID:           uuid.NewSHA1(namespace, []byte("category/"+fc.Slug)),
			Name:         fc.Name,
			Slug:         fc.Slug,
			Description:  fc.Description,
			Image:        fc.Image,
			DisplayOrder: fc.DisplayOrder,
			IsActive:     true,
		}

		subSlugs := map[string]bool{}
		for _, fs := range fc.Subcategories {
			if fs.Name == "" || fs.Slug == "" || subSlugs[fs.Slug] {
				return nil, fmt.Errorf("invalid or duplicate subcategory %q under %q", fs.Slug, fc.Slug)
			}
			subSlugs[fs.Slug] = true

			sub := &models.Subcategory{
				ID:          uuid.NewSHA1(namespace, []byte("subcategory/"+fc.Slug+"/"+fs.Slug)),
				CategoryID:  category.ID,
				Name:        fs.Name,
				Slug:        fs.Slug,
				Description: fs.Description,
				Image:       fs.Image,
				SortOrder:   fs.SortOrder,
				IsActive:    true,
			}

			leafSlugs := map[string]bool{}
			for _, fi := range fs.Items {
				if fi.Name == "" || fi.Slug == "" || leafSlugs[fi.Slug] {
					return nil, fmt.Errorf("invalid or duplicate item %q under %q/%q", fi.Slug, fc.Slug, fs.Slug)
				}
				leafSlugs[fi.Slug] = true

				sub.SubSubcategories = append(sub.SubSubcategories, &models.SubSubcategory{
					ID:            uuid.NewSHA1(namespace, []byte("item/"+fc.Slug+"/"+fs.Slug+"/"+fi.Slug)),
					SubcategoryID: sub.ID,
					Name:          fi.Name,
					Slug:          fi.Slug,
					Description:   fi.Description,
					Image:         fi.Image,
					SortOrder:     fi.SortOrder,
					IsActive:      true,
				})
			}
			sort.SliceStable(sub.SubSubcategories, func(i, j int) bool {
				a, b := sub.SubSubcategories[i], sub.SubSubcategories[j]
				if a.SortOrder != b.SortOrder {
					return a.SortOrder < b.SortOrder
				}
				return a.Name < b.Name
			})
			category.Subcategories = append(category.Subcategories, sub)
		}
		sort.SliceStable(category.Subcategories, func(i, j int) bool {
			a, b := category.Subcategories[i], category.Subcategories[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.Name < b.Name
		})
		d.categories = append(d.categories, category)
	}
	sort.SliceStable(d.categories, func(i, j int) bool {
		a, b := d.categories[i], d.categories[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.Name < b.Name
	})

	for _, fp := range f.Products {
		if fp.Name == "" || fp.Slug == "" {
			return nil, fmt.Errorf("fallback product needs name and slug (got %q/%q)", fp.Name, fp.Slug)
		}
		d.products = append(d.products, &models.Product{
			ID:               uuid.NewSHA1(namespace, []byte("product/"+fp.Slug)),
			Name:             fp.Name,
			Slug:             fp.Slug,
			Description:      fp.Description,
			Category:         fp.Category,
			Subcategory:      fp.Subcategory,
			Price:            fp.Price,
			OldPrice:         fp.OldPrice,
			Image:            fp.Image,
			Rating:           fp.Rating,
			IsActive:         true,
			IsNew:            fp.IsNew,
			IsFeatured:       fp.IsFeatured,
			IsLimitedEdition: fp.IsLimitedEdition,
			IsBlueMondaySale: fp.IsBlueMondaySale,
			CreatedAt:        fp.CreatedAt,
			UpdatedAt:        fp.CreatedAt,
		})
	}
	return d, nil
}

// Tree returns a deep copy of the full fallback hierarchy.
func (d *Dataset) Tree() []*models.Category {
	out := make([]*models.Category, 0, len(d.categories))
	for _, c := range d.categories {
		out = append(out, CloneCategory(c))
	}
	return out
}

// Subtree returns a copy of one category and its descendants.
func (d *Dataset) Subtree(slug string) (*models.Category, bool) {
	for _, c := range d.categories {
		if c.Slug == slug {
			return CloneCategory(c), true
		}
	}
	return nil, false
}

// Products returns copies of the sample products.
func (d *Dataset) Products() []*models.Product {
	out := make([]*models.Product, 0, len(d.products))
	for _, p := range d.products {
		cp := *p
		if p.OldPrice != nil {
			v := *p.OldPrice
			cp.OldPrice = &v
		}
		out = append(out, &cp)
	}
	return out
}

// CloneCategory deep-copies a category with its subcategories and leaves.
func CloneCategory(c *models.Category) *models.Category {
	out := *c
	out.Subcategories = nil
	for _, s := range c.Subcategories {
		sub := *s
		sub.SubSubcategories = nil
		for _, l := range s.SubSubcategories {
			leaf := *l
			sub.SubSubcategories = append(sub.SubSubcategories, &leaf)
		}
		out.Subcategories = append(out.Subcategories, &sub)
	}
	return &out
}
