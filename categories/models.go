// Package categories manages the audio category tree: unique names and slugs,
// an optional parent reference, and the find-or-create path used by uploads.
package categories

import "time"

// Category groups audio assets. ParentID, when set, must reference a
// different category; an immediate self-reference is rejected at creation.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}
