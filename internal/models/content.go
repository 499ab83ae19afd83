package models

import "time"

// PageContent is a static content blob keyed by page.
type PageContent struct {
	PageKey   string           `json:"page_key" db:"page_key"`
	Title     string           `json:"title" db:"title"`
	Subtitle  string           `json:"subtitle" db:"subtitle"`
	Items     []map[string]any `json:"items" db:"items"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// EmptyPageContent is returned for keys that have no stored content.
func EmptyPageContent(pageKey string) *PageContent {
	return &PageContent{
		PageKey: pageKey,
		Items:   []map[string]any{},
	}
}
