package order

import (
	"time"

	"dzgamezone-be/internal/product"
	"dzgamezone-be/internal/shipping"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions lists the statuses reachable from each status. Delivered and
// cancelled orders are final.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// AffectsStock reports whether reaching s requires the order's units to have
// been taken out of stock.
func (s Status) AffectsStock() bool {
	return s == StatusConfirmed || s == StatusShipped
}

// ProductSummary is the product as embedded in order responses. Lists carry
// id, name and slug; the detail view adds images, price and variants.
type ProductSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Images    []string          `json:"images,omitempty"`
	BasePrice *int64            `json:"basePrice,omitempty"`
	Variants  []product.Variant `json:"variants,omitempty"`
}

func summarize(p *product.Product) *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, Slug: p.Slug}
}

func populate(p *product.Product) *ProductSummary {
	price := p.BasePrice
	return &ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Images:    p.Images,
		BasePrice: &price,
		Variants:  p.Variants,
	}
}

type Order struct {
	ID            string                `json:"id"`
	Reference     string                `json:"reference"`
	ProductID     string                `json:"productId"`
	Product       *ProductSummary       `json:"product,omitempty"`
	VariantName   string                `json:"variantName,omitempty"`
	Quantity      int64                 `json:"quantity"`
	CustomerName  string                `json:"customerName"`
	CustomerPhone string                `json:"customerPhone"`
	CustomerEmail string                `json:"customerEmail"`
	Wilaya        string                `json:"wilaya"`
	DeliveryType  shipping.DeliveryType `json:"deliveryType"`
	Address       string                `json:"address"`
	Note          string                `json:"note,omitempty"`
	ProductPrice  int64                 `json:"productPrice"`
	ShippingFee   int64                 `json:"shippingFee"`
	TotalPrice    int64                 `json:"totalPrice"`
	Status        Status                `json:"status"`
	StockDeducted bool                  `json:"stockDeducted"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// CreateInput is the body of POST /api/orders.
type CreateInput struct {
	ProductID     string                `json:"productId"`
	VariantName   string                `json:"variantName"`
	Quantity      int64                 `json:"quantity"`
	CustomerName  string                `json:"customerName"`
	CustomerPhone string                `json:"customerPhone"`
	CustomerEmail string                `json:"customerEmail"`
	Wilaya        string                `json:"wilaya"`
	DeliveryType  shipping.DeliveryType `json:"deliveryType"`
	Address       string                `json:"address"`
	Note          string                `json:"note"`
}

type StockOp int

const (
	StockNone StockOp = iota
	// StockDeduct takes Quantity out of the pool, failing when fewer units remain.
	StockDeduct
	// StockRestore puts Quantity back into the pool.
	StockRestore
)

// Transition is one status change together with the stock movement that
// must be applied in the same unit of work.
type Transition struct {
	OrderID       string
	From          Status
	To            Status
	Stock         StockOp
	ProductID     string
	VariantName   string
	Quantity      int64
	// StockDeducted is the order's stockDeducted flag once applied.
	StockDeducted bool
	UpdatedAt     time.Time
}

// StockDeductedAfter is the value of the order's stockDeducted flag once t
// has been applied.
func (t Transition) StockDeductedAfter(before bool) bool {
	switch t.Stock {
	case StockDeduct:
		return true
	case StockRestore:
		return false
	default:
		return before
	}
}
