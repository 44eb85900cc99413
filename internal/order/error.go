package order

import "dzgamezone-be/internal/apperr"

var (
	ErrOrderNotFound      = apperr.NotFound("order not found")
	ErrProductNotFound    = apperr.NotFound("product not found")
	ErrInvalidStatus      = apperr.Validation("invalid status")
	ErrSameStatus         = apperr.Validation("order already has this status")
	ErrInvalidTransition  = apperr.Validation("status transition not allowed")
	ErrMissingFields      = apperr.Validation("missing required fields")
	ErrInvalidQuantity    = apperr.Validation("quantity must be at least 1")
	ErrInvalidPhone       = apperr.Validation("invalid Algerian phone number")
	ErrInvalidEmail       = apperr.Validation("invalid email address")
	ErrVariantNotFound    = apperr.Validation("variant not found")
	ErrInsufficientStock  = apperr.InsufficientStock("insufficient stock")
	ErrConcurrentUpdate   = apperr.Conflict("order was modified concurrently, retry")
	ErrReferenceCollision = apperr.Conflict("order reference already used")
)
