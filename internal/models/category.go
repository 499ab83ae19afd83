package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the root level of the catalog hierarchy.
type Category struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Slug          string         `json:"slug" db:"slug"`
	Description   string         `json:"description" db:"description"`
	Image         string         `json:"image" db:"image"`
	DisplayOrder  int            `json:"display_order" db:"display_order"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	Subcategories []*Subcategory `json:"subcategories,omitempty" db:"-"` // For nested responses
}

// Subcategory belongs to exactly one Category. Slug is unique within CategoryID.
type Subcategory struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	CategoryID       uuid.UUID         `json:"category_id" db:"category_id"`
	Name             string            `json:"name" db:"name"`
	Slug             string            `json:"slug" db:"slug"`
	Description      string            `json:"description" db:"description"`
	Image            string            `json:"image" db:"image"`
	SortOrder        int               `json:"sort_order" db:"sort_order"`
	IsActive         bool              `json:"is_active" db:"is_active"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
	SubSubcategories []*SubSubcategory `json:"sub_subcategories,omitempty" db:"-"`
}

// SubSubcategory is a leaf of the hierarchy. Slug is unique within SubcategoryID.
type SubSubcategory struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SubcategoryID uuid.UUID `json:"subcategory_id" db:"subcategory_id"`
	Name          string    `json:"name" db:"name"`
	Slug          string    `json:"slug" db:"slug"`
	Description   string    `json:"description" db:"description"`
	Image         string    `json:"image" db:"image"`
	SortOrder     int       `json:"sort_order" db:"sort_order"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HierarchySource tells the caller where a category tree came from.
type HierarchySource string

const (
	SourceLive     HierarchySource = "live"
	SourceCache    HierarchySource = "cache"
	SourceFallback HierarchySource = "fallback"
)

// Hierarchy is an assembled category tree plus its provenance.
type Hierarchy struct {
	Categories []*Category     `json:"data"`
	Source     HierarchySource `json:"source"`
}

// Degraded reports whether the tree was served without reaching the store.
func (h *Hierarchy) Degraded() bool {
	return h.Source != SourceLive
}
