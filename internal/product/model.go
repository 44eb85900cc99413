package product

import "time"

// Variant is a named configuration of a product with its own stock and price
// adjustment. Name identifies it within the product.
type Variant struct {
	Name            string   `json:"name"`
	SKU             string   `json:"sku"`
	PriceDifference int64    `json:"priceDifference"`
	Stock           int64    `json:"stock"`
	Images          []string `json:"images"`
	IsDefault       bool     `json:"isDefault"`
}

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	BasePrice   int64             `json:"basePrice"`
	Discount    float64           `json:"discount"`
	CategoryID  string            `json:"categoryId"`
	Category    *CategoryRef      `json:"category,omitempty"`
	Brand       string            `json:"brand"`
	Images      []string          `json:"images"`
	Variants    []Variant         `json:"variants"`
	Stock       int64             `json:"stock"`
	Specs       map[string]string `json:"specs"`
	IsFeatured  bool              `json:"isFeatured"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FindVariant looks a variant up by exact, case-sensitive name.
func (p *Product) FindVariant(name string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// InStock reports whether the product itself or any of its variants has stock.
func (p *Product) InStock() bool {
	if p.Stock > 0 {
		return true
	}
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}

// Filter holds the list query parameters. All set fields must match.
type Filter struct {
	CategoryID string
	Brand      string
	MinPrice   *int64
	MaxPrice   *int64
	InStock    bool
	Search     string
	IsFeatured bool
}

// Input is the body of POST /api/products.
type Input struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	BasePrice   *int64            `json:"basePrice"`
	Discount    float64           `json:"discount"`
	Category    string            `json:"category"`
	Brand       string            `json:"brand"`
	Images      []string          `json:"images"`
	Variants    []Variant         `json:"variants"`
	Stock       int64             `json:"stock"`
	Specs       map[string]string `json:"specs"`
	IsFeatured  bool              `json:"isFeatured"`
}

// UpdateInput is the body of PUT /api/products/{id}. Nil fields are kept;
// a non-nil Variants replaces the whole variant list.
type UpdateInput struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	BasePrice   *int64             `json:"basePrice"`
	Discount    *float64           `json:"discount"`
	Category    *string            `json:"category"`
	Brand       *string            `json:"brand"`
	Images      *[]string          `json:"images"`
	Variants    *[]Variant         `json:"variants"`
	Stock       *int64             `json:"stock"`
	Specs       *map[string]string `json:"specs"`
	IsFeatured  *bool              `json:"isFeatured"`
}

// Changes is what a repository writes on update: the validated input plus
// the derived slug and timestamp.
type Changes struct {
	UpdateInput
	Slug      *string
	UpdatedAt time.Time
}
