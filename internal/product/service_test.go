package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"dzgamezone-be/internal/apperr"
	"dzgamezone-be/internal/category"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, f Filter) ([]*Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Product) (*Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, ch Changes) (*Product, error) {
	args := m.Called(ctx, id, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCategories struct {
	mock.Mock
}

func (m *MockCategories) GetByID(ctx context.Context, id string) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategories) GetByIDs(ctx context.Context, ids []string) (map[string]*category.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*category.Category), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository, cats CategoryReader) *service {
	return &service{repo: repo, categories: cats, now: func() time.Time { return fixedNow }}
}

func int64Ptr(v int64) *int64 { return &v }

// --- Tests ---

func TestProduct_FindVariantAndInStock(t *testing.T) {
	p := &Product{Variants: []Variant{{Name: "Bleu FIFA", Stock: 0}, {Name: "Rouge Kratos", Stock: 2}}}

	v, ok := p.FindVariant("Rouge Kratos")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Stock)

	_, ok = p.FindVariant("rouge kratos")
	assert.False(t, ok, "variant lookup is case-sensitive")

	assert.True(t, p.InStock())
	assert.False(t, (&Product{Variants: []Variant{{Stock: 0}}}).InStock())
	assert.True(t, (&Product{Stock: 1}).InStock())
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("AttachesCategory", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)

		f := Filter{Brand: "sony"}
		repo.On("List", ctx, f).Return([]*Product{
			{ID: "p1", CategoryID: "c1"},
			{ID: "p2", CategoryID: "c1"},
		}, nil)
		cats.On("GetByIDs", ctx, []string{"c1"}).
			Return(map[string]*category.Category{"c1": {ID: "c1", Name: "Consoles", Slug: "consoles"}}, nil)

		res, err := svc.List(ctx, f)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, &CategoryRef{ID: "c1", Name: "Consoles", Slug: "consoles"}, res[1].Category)
		cats.AssertNumberOfCalls(t, "GetByIDs", 1)
	})

	t.Run("InvertedPriceRange", func(t *testing.T) {
		svc := newTestService(new(MockRepository), new(MockCategories))
		_, err := svc.List(ctx, Filter{MinPrice: int64Ptr(500), MaxPrice: int64Ptr(100)})
		assert.ErrorIs(t, err, ErrInvalidPriceRange)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCategories))
		repo.On("List", ctx, Filter{}).Return(nil, errors.New("db down"))

		_, err := svc.List(ctx, Filter{})
		assert.Error(t, err)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	valid := func() Input {
		return Input{
			Name:      "Manette DualSense",
			BasePrice: int64Ptr(15000),
			Category:  "c1",
			Variants: []Variant{
				{Name: "Blanc", SKU: "DS-W", PriceDifference: 0, Stock: 5},
				{Name: "Noir", SKU: "DS-B", PriceDifference: 2000, Stock: 5},
			},
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)

		cats.On("GetByID", ctx, "c1").Return(&category.Category{ID: "c1"}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool {
			return p.Slug == "manette-dualsense" &&
				p.BasePrice == 15000 &&
				len(p.Variants) == 2 &&
				p.Specs != nil &&
				p.Images != nil &&
				p.CreatedAt.Equal(fixedNow)
		})).Return(&Product{ID: "p1", Slug: "manette-dualsense"}, nil)

		res, err := svc.Create(ctx, valid())
		require.NoError(t, err)
		assert.Equal(t, "p1", res.ID)
		repo.AssertExpectations(t)
	})

	cases := []struct {
		name   string
		mutate func(in *Input)
		want   error
	}{
		{"missing name", func(in *Input) { in.Name = " " }, ErrNameRequired},
		{"missing price", func(in *Input) { in.BasePrice = nil }, ErrBasePriceRequired},
		{"negative price", func(in *Input) { in.BasePrice = int64Ptr(-1) }, ErrNegativePrice},
		{"missing category", func(in *Input) { in.Category = "" }, ErrCategoryRequired},
		{"negative stock", func(in *Input) { in.Stock = -3 }, ErrNegativeStock},
		{"variant without name", func(in *Input) { in.Variants[0].Name = "" }, ErrVariantNameRequired},
		{"variant without sku", func(in *Input) { in.Variants[0].SKU = "" }, ErrVariantSKURequired},
		{"duplicate variant", func(in *Input) { in.Variants[1].Name = "Blanc" }, ErrDuplicateVariant},
		{"duplicate sku", func(in *Input) { in.Variants[1].SKU = "DS-W" }, ErrDuplicateSKU},
		{"variant below zero", func(in *Input) { in.Variants[1].PriceDifference = -15001 }, ErrNegativeVariantCost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, new(MockCategories))

			in := valid()
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("NegativeVariantStock", func(t *testing.T) {
		svc := newTestService(new(MockRepository), new(MockCategories))
		in := valid()
		in.Variants[0].Stock = -1
		_, err := svc.Create(ctx, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)
		cats.On("GetByID", ctx, "c1").Return(nil, category.ErrCategoryNotFound)

		_, err := svc.Create(ctx, valid())
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)
		cats.On("GetByID", ctx, "c1").Return(&category.Category{ID: "c1"}, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, ErrProductExists)

		_, err := svc.Create(ctx, valid())
		assert.ErrorIs(t, err, ErrProductExists)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	current := &Product{ID: "p1", Name: "Old", Slug: "old", BasePrice: 100, CategoryID: "c1"}

	t.Run("RenameAndReprice", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)

		name := "FIFA 25"
		slug := "fifa-25"
		price := int64(9000)
		repo.On("GetByID", ctx, "p1").Return(current, nil)
		repo.On("Update", ctx, "p1", Changes{
			UpdateInput: UpdateInput{Name: &name, BasePrice: &price},
			Slug:        &slug,
			UpdatedAt:   fixedNow,
		}).Return(&Product{ID: "p1", Name: name, Slug: slug, CategoryID: "c1"}, nil)
		cats.On("GetByIDs", ctx, []string{"c1"}).Return(map[string]*category.Category{}, nil)

		res, err := svc.Update(ctx, "p1", UpdateInput{Name: &name, BasePrice: &price})
		require.NoError(t, err)
		assert.Equal(t, "fifa-25", res.Slug)
		repo.AssertExpectations(t)
		cats.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("MovesToMissingCategory", func(t *testing.T) {
		repo, cats := new(MockRepository), new(MockCategories)
		svc := newTestService(repo, cats)

		cat := "c9"
		repo.On("GetByID", ctx, "p1").Return(current, nil)
		cats.On("GetByID", ctx, "c9").Return(nil, category.ErrCategoryNotFound)

		_, err := svc.Update(ctx, "p1", UpdateInput{Category: &cat})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCategories))

		price := int64(-5)
		repo.On("GetByID", ctx, "p1").Return(current, nil)

		_, err := svc.Update(ctx, "p1", UpdateInput{BasePrice: &price})
		assert.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("BasePriceDropsVariantBelowZero", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCategories))

		withPromo := &Product{
			ID: "p1", Name: "Old", Slug: "old", BasePrice: 1000, CategoryID: "c1",
			Variants: []Variant{{Name: "Promo", SKU: "OLD-P", PriceDifference: -500}},
		}
		price := int64(400)
		repo.On("GetByID", ctx, "p1").Return(withPromo, nil)

		_, err := svc.Update(ctx, "p1", UpdateInput{BasePrice: &price})
		assert.ErrorIs(t, err, ErrNegativeVariantCost)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("VariantsBelowZero", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCategories))

		variants := []Variant{{Name: "Promo", SKU: "OLD-P", PriceDifference: -101}}
		repo.On("GetByID", ctx, "p1").Return(current, nil)

		_, err := svc.Update(ctx, "p1", UpdateInput{Variants: &variants})
		assert.ErrorIs(t, err, ErrNegativeVariantCost)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCategories))
		repo.On("GetByID", ctx, "nope").Return(nil, ErrProductNotFound)

		_, err := svc.Update(ctx, "nope", UpdateInput{})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockCategories))

	repo.On("Delete", ctx, "p1").Return(nil)
	repo.On("Delete", ctx, "p2").Return(ErrProductNotFound)

	assert.NoError(t, svc.Delete(ctx, "p1"))
	assert.ErrorIs(t, svc.Delete(ctx, "p2"), ErrProductNotFound)
}
