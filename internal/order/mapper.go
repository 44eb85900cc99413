package order

import (
	"time"

	"dzgamezone-be/internal/shipping"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Reference     string             `bson:"reference"`
	Product       primitive.ObjectID `bson:"product"`
	VariantName   string             `bson:"variantName,omitempty"`
	Quantity      int64              `bson:"quantity"`
	CustomerName  string             `bson:"customerName"`
	CustomerPhone string             `bson:"customerPhone"`
	CustomerEmail string             `bson:"customerEmail"`
	Wilaya        string             `bson:"wilaya"`
	DeliveryType  string             `bson:"deliveryType"`
	Address       string             `bson:"address"`
	Note          string             `bson:"note,omitempty"`
	ProductPrice  int64              `bson:"productPrice"`
	ShippingFee   int64              `bson:"shippingFee"`
	TotalPrice    int64              `bson:"totalPrice"`
	Status        string             `bson:"status"`
	StockDeducted bool               `bson:"stockDeducted"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toDocument(o *Order) (*orderDocument, error) {
	pid, err := primitive.ObjectIDFromHex(o.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	return &orderDocument{
		Reference:     o.Reference,
		Product:       pid,
		VariantName:   o.VariantName,
		Quantity:      o.Quantity,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		Wilaya:        o.Wilaya,
		DeliveryType:  string(o.DeliveryType),
		Address:       o.Address,
		Note:          o.Note,
		ProductPrice:  o.ProductPrice,
		ShippingFee:   o.ShippingFee,
		TotalPrice:    o.TotalPrice,
		Status:        string(o.Status),
		StockDeducted: o.StockDeducted,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func fromDocument(d *orderDocument) *Order {
	return &Order{
		ID:            d.ID.Hex(),
		Reference:     d.Reference,
		ProductID:     d.Product.Hex(),
		VariantName:   d.VariantName,
		Quantity:      d.Quantity,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		CustomerEmail: d.CustomerEmail,
		Wilaya:        d.Wilaya,
		DeliveryType:  shipping.DeliveryType(d.DeliveryType),
		Address:       d.Address,
		Note:          d.Note,
		ProductPrice:  d.ProductPrice,
		ShippingFee:   d.ShippingFee,
		TotalPrice:    d.TotalPrice,
		Status:        Status(d.Status),
		StockDeducted: d.StockDeducted,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
