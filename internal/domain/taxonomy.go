package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category groups posts by subject. Every post belongs to exactly one.
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	// Computed fields (populated by list queries)
	PostCount int64
}

// URL returns the public path of the category.
func (c *Category) URL() string {
	return fmt.Sprintf("/categories/%s", c.ID)
}

// Tag labels posts. A post may carry any number of tags.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	// Computed fields (populated by list queries)
	PostCount int64
}

// URL returns the public path of the tag.
func (t *Tag) URL() string {
	return fmt.Sprintf("/tags/%s", t.ID)
}

// CreateCategoryParams contains parameters for creating a category.
type CreateCategoryParams struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateTagParams contains parameters for creating a tag.
type CreateTagParams struct {
	Name string `json:"name" validate:"required,max=100"`
}
