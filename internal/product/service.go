package product

import (
	"context"
	"strings"
	"time"

	"dzgamezone-be/internal/apperr"
	"dzgamezone-be/internal/category"
	"dzgamezone-be/internal/logger"
	"dzgamezone-be/internal/utils"

	"go.uber.org/zap"
)

// CategoryReader is the part of the category store products depend on.
type CategoryReader interface {
	GetByID(ctx context.Context, id string) (*category.Category, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*category.Category, error)
}

type Service interface {
	List(ctx context.Context, f Filter) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, in Input) (*Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo       Repository
	categories CategoryReader
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryReader) Service {
	return &service{repo: repo, categories: categories, now: time.Now}
}

func (s *service) List(ctx context.Context, f Filter) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, ErrInvalidPriceRange
	}

	start := time.Now()
	products, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	if err := s.attachCategories(ctx, products); err != nil {
		log.Error("failed to resolve categories", zap.Error(err))
		return nil, err
	}

	log.Info("list products success",
		zap.Int("count", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) attachCategories(ctx context.Context, products []*Product) error {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, p := range products {
		if _, ok := seen[p.CategoryID]; ok || p.CategoryID == "" {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}
	if len(ids) == 0 {
		return nil
	}

	categories, err := s.categories.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if c, ok := categories[p.CategoryID]; ok {
			p.Category = &CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, in Input) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	name, slug, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.BasePrice == nil {
		return nil, ErrBasePriceRequired
	}

	now := s.now().UTC()
	p := &Product{
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		BasePrice:   *in.BasePrice,
		Discount:    in.Discount,
		CategoryID:  strings.TrimSpace(in.Category),
		Brand:       in.Brand,
		Images:      nonNil(in.Images),
		Variants:    normalizeVariants(in.Variants),
		Stock:       in.Stock,
		Specs:       in.Specs,
		IsFeatured:  in.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Specs == nil {
		p.Specs = map[string]string{}
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Warn("failed to create product", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	log.Info("product created",
		zap.String("product_id", created.ID),
		zap.Int("variants", len(created.Variants)),
	)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("product_id", id),
	)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch := Changes{UpdateInput: in, UpdatedAt: s.now().UTC()}
	merged := *current

	if in.Name != nil {
		name, slug, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		ch.Name, ch.Slug = &name, &slug
		merged.Name, merged.Slug = name, slug
	}
	if in.BasePrice != nil {
		merged.BasePrice = *in.BasePrice
	}
	if in.Stock != nil {
		merged.Stock = *in.Stock
	}
	if in.Variants != nil {
		variants := normalizeVariants(*in.Variants)
		ch.Variants = &variants
		merged.Variants = variants
	}
	if in.Category != nil {
		categoryID := strings.TrimSpace(*in.Category)
		ch.Category = &categoryID
		merged.CategoryID = categoryID
	}

	if err := validate(&merged); err != nil {
		return nil, err
	}
	if in.Category != nil && merged.CategoryID != current.CategoryID {
		if err := s.ensureCategory(ctx, merged.CategoryID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		log.Warn("failed to update product", zap.Error(err))
		return nil, err
	}
	if err := s.attachCategories(ctx, []*Product{updated}); err != nil {
		return nil, err
	}

	log.Info("product updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *service) ensureCategory(ctx context.Context, id string) error {
	_, err := s.categories.GetByID(ctx, id)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return ErrCategoryNotFound
	}
	return err
}

func normalizeName(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrNameRequired
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return "", "", ErrInvalidName
	}
	return name, slug, nil
}

func normalizeVariants(in []Variant) []Variant {
	out := make([]Variant, 0, len(in))
	for _, v := range in {
		v.Name = strings.TrimSpace(v.Name)
		v.SKU = strings.TrimSpace(v.SKU)
		v.Images = nonNil(v.Images)
		out = append(out, v)
	}
	return out
}

func validate(p *Product) error {
	if p.BasePrice < 0 {
		return ErrNegativePrice
	}
	if p.CategoryID == "" {
		return ErrCategoryRequired
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}

	names := make(map[string]struct{}, len(p.Variants))
	skus := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		if v.Name == "" {
			return ErrVariantNameRequired
		}
		if v.SKU == "" {
			return ErrVariantSKURequired
		}
		if v.Stock < 0 {
			return apperr.Validationf("variant %q: stock must not be negative", v.Name)
		}
		if p.BasePrice+v.PriceDifference < 0 {
			return ErrNegativeVariantCost
		}
		if _, dup := names[v.Name]; dup {
			return ErrDuplicateVariant
		}
		if _, dup := skus[v.SKU]; dup {
			return ErrDuplicateSKU
		}
		names[v.Name] = struct{}{}
		skus[v.SKU] = struct{}{}
	}
	return nil
}
