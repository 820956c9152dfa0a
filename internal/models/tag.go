package models

import (
	"strings"
	"time"
)

// Tag groups tasks. Tags are global, not owned by a user.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagCreate is the data needed to create a tag.
//
// An empty name is accepted; uniqueness is still enforced, so only one
// unnamed tag can exist.
type TagCreate struct {
	Name string `json:"name"`
}

// Normalize trims surrounding whitespace from the name.
func (t *TagCreate) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
}

// Validate only bounds the name length.
func (t TagCreate) Validate() error {
	if len(t.Name) > 100 {
		return &ValidationError{Fields: map[string]string{"name": "the length must be no more than 100"}}
	}
	return nil
}
