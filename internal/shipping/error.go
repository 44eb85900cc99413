package shipping

import "dzgamezone-be/internal/apperr"

var (
	ErrWilayaNotFound  = apperr.NotFound("wilaya not found")
	ErrWilayaExists    = apperr.Conflict("wilaya already exists (numero or nom)")
	ErrMissingFields   = apperr.Validation("numero, nom, prixDomicile and prixAgence are required")
	ErrNomRequired     = apperr.Validation("nom must not be empty")
	ErrNumeroRange     = apperr.Validationf("numero must be between %d and %d", MinNumero, MaxNumero)
	ErrNegativePrice   = apperr.Validation("prices must not be negative")
	ErrInvalidDelivery = apperr.Validation("deliveryType must be domicile or agence")
)
