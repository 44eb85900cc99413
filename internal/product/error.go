package product

import "dzgamezone-be/internal/apperr"

var (
	ErrProductNotFound     = apperr.NotFound("product not found")
	ErrProductExists       = apperr.Conflict("product already exists (slug or sku)")
	ErrNameRequired        = apperr.Validation("name is required")
	ErrInvalidName         = apperr.Validation("name must contain at least one letter or digit")
	ErrBasePriceRequired   = apperr.Validation("basePrice is required")
	ErrNegativePrice       = apperr.Validation("basePrice must not be negative")
	ErrCategoryRequired    = apperr.Validation("category is required")
	ErrCategoryNotFound    = apperr.Validation("category not found")
	ErrNegativeStock       = apperr.Validation("stock must not be negative")
	ErrVariantNameRequired = apperr.Validation("variant name is required")
	ErrVariantSKURequired  = apperr.Validation("variant sku is required")
	ErrDuplicateVariant    = apperr.Validation("variant names must be unique within a product")
	ErrDuplicateSKU        = apperr.Validation("variant skus must be unique")
	ErrInvalidPriceRange   = apperr.Validation("minPrice must not exceed maxPrice")
	ErrNegativeVariantCost = apperr.Validation("basePrice plus variant priceDifference must not be negative")
)
