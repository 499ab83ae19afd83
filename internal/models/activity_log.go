package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog records one admin write request.
type ActivityLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Actor      string    `json:"actor" db:"actor"`
	Method     string    `json:"method" db:"method"`
	Route      string    `json:"route" db:"route"`
	Path       string    `json:"path" db:"path"`
	StatusCode int       `json:"status_code" db:"status_code"`
	Error      string    `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
