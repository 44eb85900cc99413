package category

import "dzgamezone-be/internal/apperr"

var (
	ErrCategoryNotFound = apperr.NotFound("category not found")
	ErrNameRequired     = apperr.Validation("name is required")
	ErrInvalidName      = apperr.Validation("name must contain at least one letter or digit")
	ErrCategoryExists   = apperr.Conflict("category already exists (name or slug)")
	ErrParentNotFound   = apperr.Validation("parent category not found")
	ErrParentCycle      = apperr.Validation("a category cannot be nested under itself or its descendants")
)
