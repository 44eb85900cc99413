package order

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"dzgamezone-be/internal/logger"
	"dzgamezone-be/internal/metrics"
	"dzgamezone-be/internal/pricing"
	"dzgamezone-be/internal/product"
	"dzgamezone-be/internal/utils"

	"go.uber.org/zap"
)

const (
	MetricOrdersCreated   = "orders_created"
	MetricStockDeductions = "stock_deductions"
	MetricStockRestores   = "stock_restores"
	MetricStatusChanges   = "order_status_changes"
	MetricStockRefusals   = "stock_refusals"

	maxReferenceAttempts = 3
)

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

type Quoter interface {
	Quote(ctx context.Context, req pricing.Request) (*pricing.Result, error)
}

// Notifier receives orders after they are persisted. Implementations must
// not block the caller and must not report failures back.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order)
	StatusChanged(ctx context.Context, o *Order)
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, *Order)   {}
func (noopNotifier) StatusChanged(context.Context, *Order) {}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Order, error)
	Quote(ctx context.Context, req pricing.Request) (*pricing.Quote, error)
	List(ctx context.Context) ([]*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Order, error)
}

type service struct {
	repo      Repository
	products  ProductReader
	quoter    Quoter
	notifier  Notifier
	metrics   *metrics.Registry
	now       func() time.Time
	reference func() string
}

func NewService(repo Repository, products ProductReader, quoter Quoter, notifier Notifier, reg *metrics.Registry) Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &service{
		repo:      repo,
		products:  products,
		quoter:    quoter,
		notifier:  notifier,
		metrics:   reg,
		now:       time.Now,
		reference: utils.GenerateOrderReference,
	}
}

func normalizeInput(in CreateInput) CreateInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.VariantName = strings.TrimSpace(in.VariantName)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = utils.NormalizePhone(strings.TrimSpace(in.CustomerPhone))
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.Wilaya = strings.TrimSpace(in.Wilaya)
	in.Address = strings.TrimSpace(in.Address)
	in.Note = strings.TrimSpace(in.Note)
	return in
}

func validateInput(in CreateInput) error {
	if in.ProductID == "" || in.CustomerName == "" || in.CustomerPhone == "" ||
		in.CustomerEmail == "" || in.Wilaya == "" || in.DeliveryType == "" || in.Address == "" {
		return ErrMissingFields
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !utils.IsValidAlgerianPhone(in.CustomerPhone) {
		return ErrInvalidPhone
	}
	if addr, err := mail.ParseAddress(in.CustomerEmail); err != nil || addr.Address != in.CustomerEmail {
		return ErrInvalidEmail
	}
	return nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	quote, err := s.quoter.Quote(ctx, pricing.Request{
		ProductID:    in.ProductID,
		VariantName:  in.VariantName,
		Quantity:     in.Quantity,
		DeliveryType: in.DeliveryType,
		Wilaya:       in.Wilaya,
	})
	if err != nil {
		log.Info("order not priced", zap.String("product_id", in.ProductID), zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ProductID:     in.ProductID,
		VariantName:   in.VariantName,
		Quantity:      in.Quantity,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Wilaya:        quote.Wilaya.Nom,
		DeliveryType:  in.DeliveryType,
		Address:       in.Address,
		Note:          in.Note,
		ProductPrice:  quote.UnitPrice,
		ShippingFee:   quote.ShippingFee,
		TotalPrice:    quote.TotalPrice,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created *Order
	for attempt := 1; ; attempt++ {
		o.Reference = s.reference()
		created, err = s.repo.Create(ctx, o)
		if !errors.Is(err, ErrReferenceCollision) || attempt == maxReferenceAttempts {
			break
		}
	}
	if err != nil {
		log.Error("failed to store order", zap.Error(err))
		return nil, err
	}

	created.Product = summarize(quote.Product)
	s.metrics.Counter(MetricOrdersCreated).Inc()
	log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("reference", created.Reference),
		zap.Int64("total_price", created.TotalPrice),
	)

	s.notifier.OrderPlaced(ctx, created)
	return created, nil
}

func (s *service) Quote(ctx context.Context, req pricing.Request) (*pricing.Quote, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.VariantName = strings.TrimSpace(req.VariantName)
	req.Wilaya = strings.TrimSpace(req.Wilaya)

	res, err := s.quoter.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	return &res.Quote, nil
}

func (s *service) List(ctx context.Context) ([]*Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if !seen[o.ProductID] {
			seen[o.ProductID] = true
			ids = append(ids, o.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if p, ok := products[o.ProductID]; ok {
			o.Product = summarize(p)
		}
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, o.ProductID)
	switch {
	case err == nil:
		o.Product = populate(p)
	case errors.Is(err, product.ErrProductNotFound):
		// deleted products leave the order readable
	default:
		return nil, err
	}
	return o, nil
}

// plan decides the stock movement for moving o to next. Stock leaves the
// pool on the first entry into a stock-affecting status and comes back only
// when a deducted order is cancelled.
func plan(o *Order, next Status) StockOp {
	switch {
	case next.AffectsStock() && !o.StockDeducted:
		return StockDeduct
	case next == StatusCancelled && o.StockDeducted:
		return StockRestore
	default:
		return StockNone
	}
}

func (s *service) UpdateStatus(ctx context.Context, id string, status string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
	)

	next, err := ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if o.Status == next {
		return nil, ErrSameStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	t := Transition{
		OrderID:     o.ID,
		From:        o.Status,
		To:          next,
		Stock:       plan(o, next),
		ProductID:   o.ProductID,
		VariantName: o.VariantName,
		Quantity:    o.Quantity,
		UpdatedAt:   s.now().UTC(),
	}
	t.StockDeducted = t.StockDeductedAfter(o.StockDeducted)

	updated, err := s.repo.ApplyTransition(ctx, t)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			s.metrics.Counter(MetricStockRefusals).Inc()
		}
		log.Warn("status change refused",
			zap.String("from", string(o.Status)),
			zap.String("to", string(next)),
			zap.Error(err),
		)
		return nil, err
	}

	switch t.Stock {
	case StockDeduct:
		s.metrics.Counter(MetricStockDeductions).Inc()
	case StockRestore:
		s.metrics.Counter(MetricStockRestores).Inc()
	}
	s.metrics.Counter(MetricStatusChanges).Inc()
	log.Info("order status changed",
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
		zap.Bool("stock_deducted", updated.StockDeducted),
	)

	if next == StatusConfirmed || next == StatusShipped {
		if p, err := s.products.GetByID(ctx, updated.ProductID); err == nil {
			updated.Product = summarize(p)
		}
		s.notifier.StatusChanged(ctx, updated)
	}
	return updated, nil
}
