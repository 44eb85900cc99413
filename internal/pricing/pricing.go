// Package pricing computes what an order costs. It reads the catalog and the
// shipping table but never writes to either.
package pricing

import (
	"context"
	"math"
	"strings"

	"dzgamezone-be/internal/apperr"
	"dzgamezone-be/internal/product"
	"dzgamezone-be/internal/shipping"
)

var (
	ErrRegionNotFound   = apperr.NotFound("region not found")
	ErrInvalidQuantity  = apperr.Validation("quantity must be at least 1")
	ErrProductRequired  = apperr.Validation("productId is required")
	ErrRegionRequired   = apperr.Validation("wilaya is required")
	ErrQuantityTooLarge = apperr.Validation("quantity too large")
	ErrNegativePrice    = apperr.Validation("unit price cannot be negative")
)

type Request struct {
	ProductID    string                `json:"productId"`
	VariantName  string                `json:"variantName,omitempty"`
	Quantity     int64                 `json:"quantity"`
	DeliveryType shipping.DeliveryType `json:"deliveryType"`
	Wilaya       string                `json:"wilaya"`
}

type Quote struct {
	UnitPrice    int64 `json:"unitPrice"`
	Subtotal     int64 `json:"subtotal"`
	ShippingFee  int64 `json:"shippingFee"`
	TotalPrice   int64 `json:"totalPrice"`
	FreeShipping bool  `json:"freeShipping"`
}

// Compute prices qty units of p shipped to rate. An unknown variant name
// falls back to the base price. Shipping is waived once the subtotal
// reaches threshold. Every amount in the returned quote is non-negative;
// a quantity whose total does not fit in an int64 is rejected.
func Compute(p *product.Product, variantName string, qty int64, rate *shipping.Wilaya, d shipping.DeliveryType, threshold int64) (Quote, error) {
	if qty < 1 {
		return Quote{}, ErrInvalidQuantity
	}

	unit := p.BasePrice
	if variantName != "" {
		if v, ok := p.FindVariant(variantName); ok {
			unit += v.PriceDifference
		}
	}
	if unit < 0 {
		return Quote{}, ErrNegativePrice
	}
	if unit > 0 && qty > math.MaxInt64/unit {
		return Quote{}, ErrQuantityTooLarge
	}

	q := Quote{UnitPrice: unit, Subtotal: unit * qty}
	if q.Subtotal >= threshold {
		q.FreeShipping = true
	} else {
		q.ShippingFee = rate.Fee(d)
	}
	if q.ShippingFee > math.MaxInt64-q.Subtotal {
		return Quote{}, ErrQuantityTooLarge
	}
	q.TotalPrice = q.Subtotal + q.ShippingFee
	return q, nil
}

type ProductFinder interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type RateFinder interface {
	GetByName(ctx context.Context, name string) (*shipping.Wilaya, error)
}

// Result is a quote together with the records it was computed from.
type Result struct {
	Quote
	Product *product.Product
	Wilaya  *shipping.Wilaya
}

type Engine struct {
	products  ProductFinder
	rates     RateFinder
	threshold int64
}

func NewEngine(products ProductFinder, rates RateFinder, freeShippingThreshold int64) *Engine {
	return &Engine{products: products, rates: rates, threshold: freeShippingThreshold}
}

// Validate checks the parts of a request that do not need the store.
func Validate(req Request) error {
	if strings.TrimSpace(req.ProductID) == "" {
		return ErrProductRequired
	}
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !req.DeliveryType.Valid() {
		return shipping.ErrInvalidDelivery
	}
	if strings.TrimSpace(req.Wilaya) == "" {
		return ErrRegionRequired
	}
	return nil
}

func (e *Engine) Quote(ctx context.Context, req Request) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	p, err := e.products.GetByID(ctx, strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, err
	}

	rate, err := e.rates.GetByName(ctx, req.Wilaya)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}

	quote, err := Compute(p, req.VariantName, req.Quantity, rate, req.DeliveryType, e.threshold)
	if err != nil {
		return nil, err
	}

	return &Result{
		Quote:   quote,
		Product: p,
		Wilaya:  rate,
	}, nil
}
