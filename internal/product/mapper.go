package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type variantDocument struct {
	Name            string   `bson:"name"`
	SKU             string   `bson:"sku"`
	PriceDifference int64    `bson:"priceDifference"`
	Stock           int64    `bson:"stock"`
	Images          []string `bson:"images"`
	IsDefault       bool     `bson:"isDefault"`
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	BasePrice   int64              `bson:"basePrice"`
	Discount    float64            `bson:"discount"`
	Category    primitive.ObjectID `bson:"category"`
	Brand       string             `bson:"brand"`
	Images      []string           `bson:"images"`
	Variants    []variantDocument  `bson:"variants"`
	Stock       int64              `bson:"stock"`
	Specs       map[string]string  `bson:"specs"`
	IsFeatured  bool               `bson:"isFeatured"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toVariantDocuments(variants []Variant) []variantDocument {
	docs := make([]variantDocument, 0, len(variants))
	for _, v := range variants {
		docs = append(docs, variantDocument{
			Name:            v.Name,
			SKU:             v.SKU,
			PriceDifference: v.PriceDifference,
			Stock:           v.Stock,
			Images:          nonNil(v.Images),
			IsDefault:       v.IsDefault,
		})
	}
	return docs
}

func toDocument(p *Product) (*productDocument, error) {
	category, err := primitive.ObjectIDFromHex(p.CategoryID)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	return &productDocument{
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Discount:    p.Discount,
		Category:    category,
		Brand:       p.Brand,
		Images:      nonNil(p.Images),
		Variants:    toVariantDocuments(p.Variants),
		Stock:       p.Stock,
		Specs:       p.Specs,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func fromDocument(d *productDocument) *Product {
	p := &Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		BasePrice:   d.BasePrice,
		Discount:    d.Discount,
		CategoryID:  d.Category.Hex(),
		Brand:       d.Brand,
		Images:      nonNil(d.Images),
		Variants:    make([]Variant, 0, len(d.Variants)),
		Stock:       d.Stock,
		Specs:       d.Specs,
		IsFeatured:  d.IsFeatured,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if p.Specs == nil {
		p.Specs = map[string]string{}
	}
	for _, v := range d.Variants {
		p.Variants = append(p.Variants, Variant{
			Name:            v.Name,
			SKU:             v.SKU,
			PriceDifference: v.PriceDifference,
			Stock:           v.Stock,
			Images:          nonNil(v.Images),
			IsDefault:       v.IsDefault,
		})
	}
	return p
}

// setDocument builds the $set body for the fields present in ch.
func setDocument(ch Changes) (bson.M, error) {
	set := bson.M{"updatedAt": ch.UpdatedAt}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Slug != nil {
		set["slug"] = *ch.Slug
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.BasePrice != nil {
		set["basePrice"] = *ch.BasePrice
	}
	if ch.Discount != nil {
		set["discount"] = *ch.Discount
	}
	if ch.Category != nil {
		oid, err := primitive.ObjectIDFromHex(*ch.Category)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		set["category"] = oid
	}
	if ch.Brand != nil {
		set["brand"] = *ch.Brand
	}
	if ch.Images != nil {
		set["images"] = nonNil(*ch.Images)
	}
	if ch.Variants != nil {
		set["variants"] = toVariantDocuments(*ch.Variants)
	}
	if ch.Stock != nil {
		set["stock"] = *ch.Stock
	}
	if ch.Specs != nil {
		set["specs"] = *ch.Specs
	}
	if ch.IsFeatured != nil {
		set["isFeatured"] = *ch.IsFeatured
	}
	return set, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
