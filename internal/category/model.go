package category

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    string    `json:"parentId,omitempty"`
	Parent      *Category `json:"parent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateInput is the body of POST /api/categories.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parent      string `json:"parent"`
}

// UpdateInput is the body of PUT /api/categories/{id}. Nil fields are left
// untouched; an empty Parent detaches the category from its parent.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Parent      *string `json:"parent"`
}

// Changes is the resolved set of fields a repository writes on update.
type Changes struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *string
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Slug == nil && c.Description == nil && c.ParentID == nil
}
