package models

import "github.com/google/uuid"

// Admin write payloads. Slug is derived from Name when empty. IsActive
// defaults to true on create and is left unchanged on update when nil.

type CategoryInput struct {
	Name         string `json:"name" validate:"required,max=120"`
	Slug         string `json:"slug" validate:"max=120"`
	Description  string `json:"description" validate:"max=2000"`
	Image        string `json:"image" validate:"max=500"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     *bool  `json:"is_active"`
}

type SubcategoryInput struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=120"`
	Slug        string    `json:"slug" validate:"max=120"`
	Description string    `json:"description" validate:"max=2000"`
	Image       string    `json:"image" validate:"max=500"`
	SortOrder   int       `json:"sort_order" validate:"gte=0"`
	IsActive    *bool     `json:"is_active"`
}

type SubSubcategoryInput struct {
	SubcategoryID uuid.UUID `json:"subcategory_id" validate:"required"`
	Name          string    `json:"name" validate:"required,max=120"`
	Slug          string    `json:"slug" validate:"max=120"`
	Description   string    `json:"description" validate:"max=2000"`
	Image         string    `json:"image" validate:"max=500"`
	SortOrder     int       `json:"sort_order" validate:"gte=0"`
	IsActive      *bool     `json:"is_active"`
}

type ProductInput struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Slug             string   `json:"slug" validate:"max=200"`
	Description      string   `json:"description" validate:"max=5000"`
	Category         string   `json:"category" validate:"required,max=120"`
	Subcategory      string   `json:"subcategory" validate:"max=120"`
	Price            float64  `json:"price" validate:"gte=0"`
	OldPrice         *float64 `json:"old_price" validate:"omitempty,gte=0"`
	Image            string   `json:"image" validate:"max=500"`
	Rating           float64  `json:"rating" validate:"gte=0,lte=5"`
	IsActive         *bool    `json:"is_active"`
	IsNew            bool     `json:"is_new"`
	IsFeatured       bool     `json:"is_featured"`
	IsLimitedEdition bool     `json:"is_limited_edition"`
	IsBlueMondaySale bool     `json:"is_blue_monday_sale"`
}
