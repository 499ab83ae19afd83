package models

import (
	"time"

	"github.com/google/uuid"
)

// Product sort keys accepted by the listing endpoints.
const (
	SortFeatured  = "featured"
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// DefaultPageSize is used when a listing request carries no limit.
const DefaultPageSize = 8

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 100

type Product struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Slug             string    `json:"slug" db:"slug"`
	Description      string    `json:"description" db:"description"`
	Category         string    `json:"category" db:"category"`
	Subcategory      string    `json:"subcategory" db:"subcategory"`
	Price            float64   `json:"price" db:"price"`
	OldPrice         *float64  `json:"old_price" db:"old_price"`
	Image            string    `json:"image" db:"image"`
	Rating           float64   `json:"rating" db:"rating"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	IsNew            bool      `json:"is_new" db:"is_new"`
	IsFeatured       bool      `json:"is_featured" db:"is_featured"`
	IsLimitedEdition bool      `json:"is_limited_edition" db:"is_limited_edition"`
	IsBlueMondaySale bool      `json:"is_blue_monday_sale" db:"is_blue_monday_sale"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// OnSale is true when a discount price exists or the promotional flag is set.
func (p *Product) OnSale() bool {
	return p.OldPrice != nil || p.IsBlueMondaySale
}

// ProductFilter holds filter, sort and paging criteria for product listings.
// Boolean flags restrict the result when true and are ignored when false.
type ProductFilter struct {
	Category         string `json:"category,omitempty"`    // Category label or slug, case-insensitive
	Subcategory      string `json:"subcategory,omitempty"` // Subcategory label or slug, case-insensitive
	IsNew            bool   `json:"is_new,omitempty"`
	IsFeatured       bool   `json:"is_featured,omitempty"`
	IsLimitedEdition bool   `json:"is_limited_edition,omitempty"`
	OnSale           bool   `json:"on_sale,omitempty"` // old_price present OR promotional flag
	Search           string `json:"search,omitempty"`  // Matches name, description, category
	Sort             string `json:"sort,omitempty"`
	Page             int    `json:"page,omitempty"`
	Limit            int    `json:"limit,omitempty"`
}

// Normalize applies paging defaults and bounds.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// Offset returns the row offset of the requested page.
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ProductPage is one page of a filtered listing. Total counts the whole
// filtered set, not just Items.
type ProductPage struct {
	Items []*Product `json:"products"`
	Total int        `json:"total"`
}
