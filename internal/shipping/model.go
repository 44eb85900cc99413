package shipping

import "time"

const (
	MinNumero = 1
	MaxNumero = 69
)

type DeliveryType string

const (
	DeliveryDomicile DeliveryType = "domicile"
	DeliveryAgence   DeliveryType = "agence"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryDomicile || d == DeliveryAgence
}

// Wilaya is the flat shipping rate of one region.
type Wilaya struct {
	ID           string    `json:"id"`
	Numero       int       `json:"numero"`
	Nom          string    `json:"nom"`
	PrixDomicile int64     `json:"prixDomicile"`
	PrixAgence   int64     `json:"prixAgence"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Fee returns the base fee for the delivery type: home delivery for
// domicile, pickup point otherwise.
func (w *Wilaya) Fee(d DeliveryType) int64 {
	if d == DeliveryDomicile {
		return w.PrixDomicile
	}
	return w.PrixAgence
}

type CreateInput struct {
	Numero       *int   `json:"numero"`
	Nom          string `json:"nom"`
	PrixDomicile *int64 `json:"prixDomicile"`
	PrixAgence   *int64 `json:"prixAgence"`
}

// UpdateInput is the body of PUT /api/shipping-wilayas/{numero}. Fields
// left nil keep their stored value.
type UpdateInput struct {
	Nom          *string `json:"nom"`
	PrixDomicile *int64  `json:"prixDomicile"`
	PrixAgence   *int64  `json:"prixAgence"`
}

type Changes struct {
	UpdateInput
	UpdatedAt time.Time
}
